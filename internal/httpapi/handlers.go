package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"callboard/internal/audio"
	"callboard/internal/audit"
	"callboard/internal/auth"
	"callboard/internal/bindings"
	"callboard/internal/callrecords"
	"callboard/internal/contact"
	"callboard/internal/convai"
	"callboard/internal/reporting"
	syncsvc "callboard/internal/sync"
	"callboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Bindings *bindings.Service
	Records  *callrecords.Service
	Sync     *syncsvc.Service
	Relay    *audio.Relay
	Provider convai.Provider
	Reports  *reporting.Service
	Contact  *contact.Service

	// Audit is best-effort; nil disables it.
	Audit *audit.Service
}

// --- Auth ---

type loginRequest struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a trusted-boundary endpoint. Credential validation happens at
// the identity provider; this exchange assumes the caller was already
// authenticated upstream.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.AccountID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, account_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.AccountID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

func (h Handlers) ListCalls(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
	}

	page, err := h.Records.ListByAccount(c.Request.Context(), accountID, limit, c.Query("cursor"))
	if err != nil {
		if errors.Is(err, callrecords.ErrInvalidCursor) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetCallDetail returns the stored record plus the provider's transcript and
// analysis. The transcript fetch is best-effort; a provider outage still
// returns the record.
func (h Handlers) GetCallDetail(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	conversationID := c.Param("conversation_id")

	rec, err := h.Records.GetByConversation(c.Request.Context(), accountID, conversationID)
	if err != nil {
		if errors.Is(err, callrecords.ErrNotFound) || errors.Is(err, callrecords.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	resp := gin.H{"record": rec}
	if h.Provider != nil && h.Provider.Configured() {
		detail, err := h.Provider.GetCallDetail(c.Request.Context(), conversationID)
		switch {
		case err == nil:
			resp["detail"] = detail
		case errors.Is(err, convai.ErrNotFound):
			// Seeded test records have no upstream conversation.
		default:
			logger.FromGin(c).Warn("call detail fetch failed", "conversation_id", conversationID, "err", err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// StreamCallAudio relays the recording, honoring Range requests.
func (h Handlers) StreamCallAudio(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	conversationID := c.Param("conversation_id")

	// Ownership gate: the relay serves only calls the account can see.
	if _, err := h.Records.GetByConversation(c.Request.Context(), accountID, conversationID); err != nil {
		if errors.Is(err, callrecords.ErrNotFound) || errors.Is(err, callrecords.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	err = h.Relay.ServeAudio(c.Request.Context(), c.Writer, conversationID, c.GetHeader("Range"))
	if err != nil {
		if c.Writer.Written() {
			logger.FromGin(c).Warn("audio write aborted", "conversation_id", conversationID, "err", err)
			return
		}
		switch {
		case errors.Is(err, convai.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "recording not found"})
		case errors.Is(err, convai.ErrNotConfigured):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		default:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "recording fetch failed"})
		}
	}
}

// TriggerSync runs one sync pass and reports its counters.
func (h Handlers) TriggerSync(c *gin.Context) {
	res, err := h.Sync.Run(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, syncsvc.ErrProviderNotConfigured):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		case errors.Is(err, syncsvc.ErrAlreadyRunning):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
		case errors.Is(err, convai.ErrUpstream):
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "provider listing failed"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Phone number bindings ---

type bindRequest struct {
	PhoneNumber string `json:"phone_number"`
	AgentID     string `json:"agent_id"`
}

type rebindRequest struct {
	PhoneNumber string `json:"phone_number"`
}

func (h Handlers) ListBindings(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	out, err := h.Bindings.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bindings": out})
}

func (h Handlers) CreateBinding(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	var req bindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	b, err := h.Bindings.Bind(c.Request.Context(), accountID, req.PhoneNumber, req.AgentID)
	if err != nil {
		h.bindingError(c, err)
		return
	}
	h.auditBinding(c, audit.EventTypeBindingCreated, accountID, b.ID, "bound "+b.PhoneNumber)
	c.JSON(http.StatusCreated, b)
}

func (h Handlers) UpdateBinding(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	var req rebindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	// Ownership check before mutating; Get applies no tenancy filter.
	id := c.Param("binding_id")
	existing, err := h.Bindings.Get(c.Request.Context(), id)
	if err != nil || existing.AccountID != accountID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "binding not found"})
		return
	}

	b, err := h.Bindings.Rebind(c.Request.Context(), id, req.PhoneNumber)
	if err != nil {
		h.bindingError(c, err)
		return
	}
	h.auditBinding(c, audit.EventTypeBindingUpdated, accountID, b.ID, "rebound to "+b.PhoneNumber)
	c.JSON(http.StatusOK, b)
}

func (h Handlers) DeleteBinding(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	id := c.Param("binding_id")
	if err := h.Bindings.Delete(c.Request.Context(), accountID, id); err != nil {
		h.bindingError(c, err)
		return
	}
	h.auditBinding(c, audit.EventTypeBindingDeleted, accountID, id, "binding removed")
	c.Status(http.StatusNoContent)
}

func (h Handlers) bindingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bindings.ErrInvalidPhoneNumber), errors.Is(err, bindings.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, bindings.ErrPhoneNumberTaken), errors.Is(err, bindings.ErrAgentTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, bindings.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "binding not found"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "binding operation failed"})
	}
}

func (h Handlers) auditBinding(c *gin.Context, typ audit.EventType, accountID, bindingID, message string) {
	if h.Audit == nil {
		return
	}
	userID, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	if err := h.Audit.LogBindingChange(c.Request.Context(), typ, accountID, userID, role, bindingID, message); err != nil {
		logger.FromGin(c).Warn("binding audit failed", "err", err)
	}
}

// --- Reports ---

func (h Handlers) CallsSummary(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}

	from, err1 := strconv.ParseInt(c.Query("from"), 10, 64)
	to, err2 := strconv.ParseInt(c.Query("to"), 10, 64)
	if err1 != nil || err2 != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be epoch seconds"})
		return
	}

	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		AccountID: accountID,
		Range:     reporting.TimeRange{From: from, To: to},
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Contact ---

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// SubmitContact is public and unauthenticated.
func (h Handlers) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	m, err := h.Contact.Submit(c.Request.Context(), req.Name, req.Email, req.Company, req.Message)
	if err != nil {
		if errors.Is(err, contact.ErrInvalidMessage) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": m.ID})
}

// ListContactMessages returns recent inquiries for operator review. Messages
// are not tenant-scoped, so routing restricts this to platform operators.
func (h Handlers) ListContactMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	msgs, err := h.Contact.List(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// --- Test data (admin) ---

func (h Handlers) SeedTestCalls(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}
	var req callrecords.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	n, err := h.Records.SeedTestCalls(c.Request.Context(), accountID, req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "seeding failed", "inserted": n})
		return
	}
	h.auditTestData(c, audit.EventTypeTestSeed, accountID, n)
	c.JSON(http.StatusOK, gin.H{"inserted": n})
}

func (h Handlers) PurgeTestCalls(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil || accountID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_id required"})
		return
	}

	n, err := h.Records.PurgeByAccount(c.Request.Context(), accountID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "purge failed"})
		return
	}
	h.auditTestData(c, audit.EventTypeTestPurge, accountID, n)
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h Handlers) auditTestData(c *gin.Context, typ audit.EventType, accountID string, count int) {
	if h.Audit == nil {
		return
	}
	userID, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	if err := h.Audit.LogTestData(c.Request.Context(), typ, accountID, userID, role, count); err != nil {
		logger.FromGin(c).Warn("test data audit failed", "err", err)
	}
}
