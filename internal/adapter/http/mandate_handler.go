package http

import (
	"net/http"
	"time"

	"lendmitra-backend/internal/usecase/mandate"

	"github.com/labstack/echo/v4"
)

type MandateHandler struct{ uc *mandate.Usecase }

func NewMandateHandler(uc *mandate.Usecase) *MandateHandler { return &MandateHandler{uc: uc} }

type createMandateReq struct {
	ApplicationID    string  `json:"application_id"    validate:"required,hex32"`
	CollectionAmount float64 `json:"collection_amount" validate:"required,gt=0"`
	// Canonical date `YYYY-MM-DD`
	CollectionDate string `json:"collection_date" validate:"required,datetime=2006-01-02"`
}

func (h *MandateHandler) Create(c echo.Context) error {
	var req createMandateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	date, _ := time.Parse("2006-01-02", req.CollectionDate)
	dto, err := h.uc.Create(c.Request().Context(), mandate.CreateInput{
		ApplicationID:    req.ApplicationID,
		CollectionAmount: req.CollectionAmount,
		CollectionDate:   date.UTC(),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MandateHandler) CheckStatus(c echo.Context) error {
	dto, err := h.uc.CheckStatus(c.Request().Context(), c.Param("mandate_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Latest answers the authoritative mandate for an application; when none
// exists the body is a JSON null so cards render nothing.
func (h *MandateHandler) Latest(c echo.Context) error {
	dto, err := h.uc.Latest(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type pennyDropReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSC          string `json:"ifsc"           validate:"required,ifsc"`
}

func (h *MandateHandler) PennyDrop(c echo.Context) error {
	var req pennyDropReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	valid, holder, err := h.uc.PennyDrop(c.Request().Context(), req.ApplicationID, req.AccountNumber, req.IFSC)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"account_valid": valid,
		"holder_name":   holder,
	})
}

type disburseReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSC          string `json:"ifsc"           validate:"required,ifsc"`
}

func (h *MandateHandler) Disburse(c echo.Context) error {
	var req disburseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Disburse(c.Request().Context(), mandate.DisburseInput{
		ApplicationID: req.ApplicationID,
		Account:       req.AccountNumber,
		IFSC:          req.IFSC,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
