package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Products

func (h *Handler) GetProducts(c echo.Context) error {
	out, err := h.svc.GetProducts(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetProduct(c echo.Context) error {
	out, err := h.svc.GetProduct(c.Request().Context(), c.Param("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	out, err := h.svc.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.svc.UpdateProduct(c.Request().Context(), c.Param("code"), &req); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.svc.DeleteProduct(c.Request().Context(), c.Param("code")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Licenses

func (h *Handler) IssueLicense(c echo.Context) error {
	var req IssueLicenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	out, err := h.svc.IssueLicense(c.Request().Context(), &req)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) GetLicense(c echo.Context) error {
	out, err := h.svc.GetLicense(c.Request().Context(), c.Param("key"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetLicensesForProduct(c echo.Context) error {
	out, err := h.svc.GetLicensesForProduct(c.Request().Context(), c.Param("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateLicenseStatus(c echo.Context) error {
	var req UpdateLicenseStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.svc.SetLicenseStatus(c.Request().Context(), c.Param("key"), req.Status); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateLicenseVersion(c echo.Context) error {
	var req UpdateLicenseVersionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.svc.SetLicenseVersion(c.Request().Context(), c.Param("key"), req.Version); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Activations

func (h *Handler) GetActivations(c echo.Context) error {
	out, err := h.svc.GetActivations(c.Request().Context(), c.Param("key"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RevokeActivation(c echo.Context) error {
	err := h.svc.RevokeActivation(c.Request().Context(), c.Param("key"), c.Param("machineId"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func jsonError(c echo.Context, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
