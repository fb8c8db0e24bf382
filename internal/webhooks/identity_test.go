package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"callboard/internal/accounts"
	"callboard/internal/bindings"

	"github.com/gin-gonic/gin"
)

func newIdentityFixture(t *testing.T) (*gin.Engine, *accounts.Service, time.Time) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)

	accountSvc := accounts.NewService(
		accounts.NewMemoryRepo(),
		bindings.NewService(bindings.NewMemoryRepo()),
	)

	r := gin.New()
	r.POST("/webhooks/identity", NewIdentityHandler(v, accountSvc).Handle)
	return r, accountSvc, now
}

func postEvent(t *testing.T, r *gin.Engine, now time.Time, payload string) *httptest.ResponseRecorder {
	t.Helper()
	ts := fmt.Sprintf("%d", now.Unix())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewBufferString(payload))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", sign(t, testSecret, "msg_1", ts, []byte(payload)))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdentityWebhook_UserCreated(t *testing.T) {
	r, accountSvc, now := newIdentityFixture(t)

	payload := `{"type":"user.created","data":{"id":"user_1","email_addresses":[{"email_address":"owner@shop.example"}]}}`
	rec := postEvent(t, r, now, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	a, err := accountSvc.GetByExternalID(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("account not mirrored: %v", err)
	}
	if a.Email != "owner@shop.example" || !a.IsActive {
		t.Fatalf("unexpected account: %+v", a)
	}
}

func TestIdentityWebhook_UserDeleted(t *testing.T) {
	r, accountSvc, now := newIdentityFixture(t)

	if _, err := accountSvc.UpsertFromIdentity(context.Background(), "user_1", "", true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := postEvent(t, r, now, `{"type":"user.deleted","data":{"id":"user_1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, err := accountSvc.GetByExternalID(context.Background(), "user_1"); err == nil {
		t.Fatal("account survived deletion event")
	}
}

func TestIdentityWebhook_UnknownTypeAcknowledged(t *testing.T) {
	r, _, now := newIdentityFixture(t)

	rec := postEvent(t, r, now, `{"type":"session.created","data":{"id":"sess_1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown events must be acknowledged, got %d", rec.Code)
	}
}

func TestIdentityWebhook_RejectsBadSignature(t *testing.T) {
	r, accountSvc, now := newIdentityFixture(t)

	payload := `{"type":"user.created","data":{"id":"user_1"}}`
	ts := fmt.Sprintf("%d", now.Unix())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewBufferString(payload))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", "v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if _, err := accountSvc.GetByExternalID(context.Background(), "user_1"); err == nil {
		t.Fatal("unverified event was applied")
	}
}

func TestIdentityWebhook_RejectsMissingHeaders(t *testing.T) {
	r, _, _ := newIdentityFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
