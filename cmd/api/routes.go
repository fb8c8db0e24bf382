package main

import (
	"database/sql"
	"net/http"
	"time"

	"callboard/internal/httpapi"
	"callboard/internal/rbac"
	"callboard/internal/webhooks"
	"callboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, identity *webhooks.IdentityHandler, authMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Identity provider webhooks (public, signature-verified).
	if identity != nil {
		r.POST("/webhooks/identity", identity.Handle)
	}

	r.POST("/v1/contact", h.SubmitContact)
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW, rbac.RequireAccount())
	{
		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleStaff))
		{
			calls.GET("", h.ListCalls)
			calls.GET("/:conversation_id", h.GetCallDetail)
			calls.GET("/:conversation_id/audio", h.StreamCallAudio)
			calls.POST("/sync", h.TriggerSync)
		}

		numbers := v1.Group("/phone-numbers")
		numbers.Use(rbac.RequireAnyRole(rbac.RoleOwner))
		{
			numbers.GET("", h.ListBindings)
			numbers.POST("", h.CreateBinding)
			numbers.PATCH("/:binding_id", h.UpdateBinding)
			numbers.DELETE("/:binding_id", h.DeleteBinding)
		}

		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleStaff))
		{
			reports.GET("/calls-summary", h.CallsSummary)
		}

		// Synthetic data management. Owner only; hidden support_agent is
		// intentionally not included.
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleOwner))
		{
			admin.POST("/test-calls", h.SeedTestCalls)
			admin.DELETE("/test-calls", h.PurgeTestCalls)

			// Inquiries span all tenants; the empty allow-list means only
			// super_admin gets through.
			admin.GET("/contact-messages", rbac.RequireAnyRole(), h.ListContactMessages)
		}
	}
}
