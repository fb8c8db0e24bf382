package callrecords

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound        = errors.New("callrecords: not found")
	ErrDuplicate       = errors.New("callrecords: conversation already stored for account")
	ErrInvalidArgument = errors.New("callrecords: invalid argument")
	ErrInvalidCursor   = errors.New("callrecords: invalid cursor")
)

// Repository is the persistence contract for call records.
//
// Implementations must enforce UNIQUE (account_id, conversation_id) and
// surface violations as ErrDuplicate; the sync engine relies on that to stay
// idempotent under overlapping runs.
type Repository interface {
	// Insert stores a new record. ErrDuplicate when the (account,
	// conversation) pair already exists.
	Insert(ctx context.Context, rec CallRecord) error

	// ExistsConversation reports whether the account already has this
	// conversation. Index-backed; called once per sync candidate.
	ExistsConversation(ctx context.Context, accountID, conversationID string) (bool, error)

	// MaxStartTime returns the largest start time across ALL accounts (the
	// sync high-water mark). ok is false when no records exist.
	MaxStartTime(ctx context.Context) (ts int64, ok bool, err error)

	// ListByAccount pages through an account's calls, newest first.
	ListByAccount(ctx context.Context, accountID string, limit int, cursor string) (Page, error)

	// GetByConversation fetches one record scoped to the account.
	GetByConversation(ctx context.Context, accountID, conversationID string) (CallRecord, error)

	// DeleteByAccount bulk-purges all of an account's records.
	DeleteByAccount(ctx context.Context, accountID string) (int, error)
}

// Cursor codec: opaque base64 over "startTime:id". Keyset pagination keys on
// (start_time DESC, id DESC) so inserts during paging never shift pages.

func encodeCursor(startTime int64, id string) string {
	return base64.RawURLEncoding.EncodeToString(fmt.Appendf(nil, "%d:%s", startTime, id))
}

func decodeCursor(cursor string) (startTime int64, id string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, "", ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return 0, "", ErrInvalidCursor
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", ErrInvalidCursor
	}
	return ts, parts[1], nil
}
