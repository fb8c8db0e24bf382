package audio

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"callboard/internal/convai"
)

// Relay proxies call audio from the provider to dashboard clients, adding
// byte-range support the upstream endpoint does not offer.
//
// The whole payload is buffered before the first response byte is written.
// Call recordings are a few MB at most, and buffering is what makes 416 and
// Content-Range math possible without upstream range support.
type Relay struct {
	provider convai.Provider

	// fetchTimeout bounds the upstream fetch independently of the client
	// connection.
	fetchTimeout time.Duration
}

func NewRelay(provider convai.Provider) *Relay {
	return &Relay{provider: provider, fetchTimeout: 60 * time.Second}
}

// ServeAudio fetches the recording for conversationID and writes it honoring
// rangeHeader. The returned error is for logging; by the time it is non-nil
// for a write failure the status line may already be out.
func (r *Relay) ServeAudio(ctx context.Context, w http.ResponseWriter, conversationID, rangeHeader string) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	body, err := r.provider.GetCallAudio(fetchCtx, conversationID)
	if err != nil {
		return err
	}

	res := EvaluateRange(rangeHeader, int64(len(body)))

	h := w.Header()
	h.Set("Content-Type", "audio/mpeg")
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-store")
	h.Set("Content-Disposition", `inline; filename=conversation.mp3`)
	if res.ContentRange != "" {
		h.Set("Content-Range", res.ContentRange)
	}

	if res.Status == http.StatusRequestedRangeNotSatisfiable {
		h.Set("Content-Length", "0")
		w.WriteHeader(res.Status)
		return nil
	}

	chunk := body[res.Start : res.End+1]
	h.Set("Content-Length", strconv.Itoa(len(chunk)))
	w.WriteHeader(res.Status)
	_, err = w.Write(chunk)
	return err
}
