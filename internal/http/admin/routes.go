package admin

import "github.com/labstack/echo/v4"

func RegisterRoutes(g *echo.Group, h *Handler) {

	// Products
	g.GET("/products", h.GetProducts)
	g.GET("/products/:code", h.GetProduct)
	g.POST("/products", h.CreateProduct)
	g.PUT("/products/:code", h.UpdateProduct)
	g.DELETE("/products/:code", h.DeleteProduct)

	// Licenses
	g.POST("/licenses", h.IssueLicense)
	g.GET("/licenses/:key", h.GetLicense)
	g.GET("/products/:code/licenses", h.GetLicensesForProduct)
	g.PUT("/licenses/:key/status", h.UpdateLicenseStatus)
	g.PUT("/licenses/:key/version", h.UpdateLicenseVersion)

	// Machine activations
	g.GET("/licenses/:key/activations", h.GetActivations)
	g.DELETE("/licenses/:key/activations/:machineId", h.RevokeActivation)
}
