package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"callboard/internal/accounts"
	"callboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AccountSink is what the identity webhook needs from the account service.
type AccountSink interface {
	UpsertFromIdentity(ctx context.Context, externalID, email string, isActive bool) (accounts.Account, error)
	DeleteFromIdentity(ctx context.Context, externalID string) (int, error)
}

// IdentityHandler ingests user lifecycle events from the identity provider
// and mirrors them into local accounts.
type IdentityHandler struct {
	verifier *Verifier
	accounts AccountSink
}

func NewIdentityHandler(verifier *Verifier, accounts AccountSink) *IdentityHandler {
	return &IdentityHandler{verifier: verifier, accounts: accounts}
}

// identityEvent is the provider's envelope. Only the fields we mirror are
// decoded.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		Banned         bool   `json:"banned"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// maxEventBytes caps the webhook body read. Identity events are small.
const maxEventBytes = 1 << 20

// Handle verifies and applies one event. Unknown event types are acknowledged
// with 200 so the provider stops retrying them.
func (h *IdentityHandler) Handle(c *gin.Context) {
	log := logger.FromGin(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = h.verifier.Verify(
		c.GetHeader("svix-id"),
		c.GetHeader("svix-timestamp"),
		c.GetHeader("svix-signature"),
		payload,
	)
	if err != nil {
		log.Warn("identity webhook rejected", "err", err)
		status := http.StatusUnauthorized
		if errors.Is(err, ErrMissingHeaders) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "signature verification failed"})
		return
	}

	var evt identityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}
	if evt.Data.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event missing user id"})
		return
	}

	ctx := c.Request.Context()
	switch evt.Type {
	case "user.created", "user.updated":
		email := ""
		if len(evt.Data.EmailAddresses) > 0 {
			email = evt.Data.EmailAddresses[0].EmailAddress
		}
		if _, err := h.accounts.UpsertFromIdentity(ctx, evt.Data.ID, email, !evt.Data.Banned); err != nil {
			log.Error("identity upsert failed", "external_id", evt.Data.ID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account sync failed"})
			return
		}
	case "user.deleted":
		if _, err := h.accounts.DeleteFromIdentity(ctx, evt.Data.ID); err != nil {
			log.Error("identity delete failed", "external_id", evt.Data.ID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account sync failed"})
			return
		}
	default:
		log.Info("identity event ignored", "type", evt.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
