package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"hollybrook.dev/keygate/api"
	"hollybrook.dev/keygate/internal/activation"
	"hollybrook.dev/keygate/internal/keys"
	"hollybrook.dev/keygate/internal/product"
)

type Handler struct {
	ActivationService *activation.Service
	ProductService    *product.Service
}

func NewHandler(a *activation.Service, p *product.Service) *Handler {
	return &Handler{
		ActivationService: a,
		ProductService:    p,
	}
}

// POST /validate
func (h *Handler) Validate(c echo.Context) error {
	var req api.ValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ValidateResponse{
			Valid: false,
			Error: &api.Error{Code: api.CodeInvalidFormat, Message: "invalid request body"},
		})
	}

	if !keys.Valid(keys.Normalize(req.Key), "") {
		return c.JSON(http.StatusBadRequest, api.ValidateResponse{
			Valid: false,
			Error: &api.Error{Code: api.CodeInvalidFormat, Message: "license key format is invalid"},
		})
	}

	res, err := h.ActivationService.Validate(c.Request().Context(), req.Key, req.Product)
	if err != nil {
		status, wireErr := mapError(err)
		return c.JSON(status, api.ValidateResponse{Valid: false, Error: wireErr})
	}

	return c.JSON(http.StatusOK, api.ValidateResponse{
		Valid:   true,
		License: &res.License,
		Version: &res.Version,
	})
}

// POST /activate
func (h *Handler) Activate(c echo.Context) error {
	var req api.ActivateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ActivateResponse{
			Success: false,
			Error:   &api.Error{Code: api.CodeInvalidFormat, Message: "invalid request body"},
		})
	}

	if !keys.Valid(keys.Normalize(req.Key), "") {
		return c.JSON(http.StatusBadRequest, api.ActivateResponse{
			Success: false,
			Error:   &api.Error{Code: api.CodeInvalidFormat, Message: "license key format is invalid"},
		})
	}
	if req.MachineID == "" {
		return c.JSON(http.StatusBadRequest, api.ActivateResponse{
			Success: false,
			Error:   &api.Error{Code: api.CodeInvalidFormat, Message: "machineId is required"},
		})
	}

	info, err := h.ActivationService.Activate(
		c.Request().Context(),
		req.Key,
		req.MachineID,
		req.Version,
		req.Product,
	)
	if err != nil {
		status, wireErr := mapError(err)
		return c.JSON(status, api.ActivateResponse{Success: false, Error: wireErr})
	}

	return c.JSON(http.StatusOK, api.ActivateResponse{
		Success: true,
		License: info,
	})
}

// GET /productver/:code
func (h *Handler) GetProductVersion(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "missing product code",
		})
	}

	prod, err := h.ProductService.GetByCode(c.Request().Context(), code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}
	if prod == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "product not found",
		})
	}

	return c.JSON(http.StatusOK, api.VersionInfo{
		Product:       prod.ProductCode,
		LatestVersion: prod.LatestVersion,
		DownloadURL:   prod.DownloadURL,
	})
}

// mapError translates activation errors into wire error codes and HTTP
// statuses. Messages go out verbatim; clients surface them to users.
func mapError(err error) (int, *api.Error) {
	var (
		notFound *activation.NotFoundError
		mismatch *activation.ProductMismatchError
		inactive *activation.InactiveLicenseError
		limit    *activation.ActivationLimitError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, &api.Error{Code: api.CodeNotFound, Message: "license key not found"}
	case errors.As(err, &mismatch):
		return http.StatusForbidden, &api.Error{Code: api.CodeProductMismatch, Message: mismatch.Error()}
	case errors.As(err, &inactive):
		return http.StatusForbidden, &api.Error{Code: api.CodeInactive, Message: inactive.Error()}
	case errors.As(err, &limit):
		return http.StatusConflict, &api.Error{Code: api.CodeActivationLimit, Message: limit.Error()}
	default:
		return http.StatusInternalServerError, &api.Error{Code: "INTERNAL_ERROR", Message: "internal server error"}
	}
}
