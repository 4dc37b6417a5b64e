package http

import (
	"net/http"

	"lendmitra-backend/internal/usecase/verification"

	"github.com/labstack/echo/v4"
)

type VerificationHandler struct{ uc *verification.Usecase }

func NewVerificationHandler(uc *verification.Usecase) *VerificationHandler {
	return &VerificationHandler{uc: uc}
}

type verifyPANReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	PAN           string `json:"pan"            validate:"required"`
}

// VerifyPAN deliberately leaves format checking to the usecase so that a bad
// PAN is recorded as ErrInvalidFormat, not a generic validation failure.
func (h *VerificationHandler) VerifyPAN(c echo.Context) error {
	var req verifyPANReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.VerifyPAN(c.Request().Context(), req.ApplicationID, req.PAN)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type verifyAadhaarReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	Aadhaar       string `json:"aadhaar"        validate:"required"`
}

func (h *VerificationHandler) VerifyAadhaar(c echo.Context) error {
	var req verifyAadhaarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.VerifyAadhaar(c.Request().Context(), req.ApplicationID, req.Aadhaar)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type verifyBankReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSC          string `json:"ifsc"           validate:"required"`
}

func (h *VerificationHandler) VerifyBankAccount(c echo.Context) error {
	var req verifyBankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.VerifyBankAccount(c.Request().Context(), req.ApplicationID, req.AccountNumber, req.IFSC)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type verifyIFSCReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	IFSC          string `json:"ifsc"           validate:"required"`
}

func (h *VerificationHandler) VerifyIFSC(c echo.Context) error {
	var req verifyIFSCReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.VerifyIFSC(c.Request().Context(), req.ApplicationID, req.IFSC)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VerificationHandler) List(c echo.Context) error {
	dtos, err := h.uc.List(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}
