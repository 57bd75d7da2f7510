package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the client-facing endpoints under the given Echo
// group. None of them require authentication; possession of a license key
// is the credential.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/validate", h.Validate)
	g.POST("/activate", h.Activate)
	g.GET("/productver/:code", h.GetProductVersion)
}
