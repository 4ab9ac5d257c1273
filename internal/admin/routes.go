package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the read-only management endpoints. There is no
// write surface and so no API-key middleware, unlike the teacher's
// RegisterRoutes — this API can only ever report state, never change it.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/stats", h.Stats)
	v1.GET("/leases", h.Leases)
	v1.GET("/zone", h.Zone)
}
