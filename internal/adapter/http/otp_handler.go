package http

import (
	"net/http"

	"lendmitra-backend/internal/usecase/otp"

	"github.com/labstack/echo/v4"
)

type OTPHandler struct{ uc *otp.Usecase }

func NewOTPHandler(uc *otp.Usecase) *OTPHandler { return &OTPHandler{uc: uc} }

type issueOTPReq struct {
	Mobile string `json:"mobile" validate:"required"`
}

func (h *OTPHandler) Issue(c echo.Context) error {
	var req issueOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.uc.Issue(c.Request().Context(), req.Mobile)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type verifyOTPReq struct {
	Mobile  string `json:"mobile"  validate:"required"`
	Code    string `json:"code"    validate:"required,len=6"`
	Consent *struct {
		Purpose string `json:"purpose" validate:"required"`
		Version string `json:"version" validate:"required"`
	} `json:"consent"`
}

// Verify checks the OTP and, when the payload carries a consent block,
// records the consent best-effort after a successful verification.
func (h *OTPHandler) Verify(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.uc.Verify(c.Request().Context(), req.Mobile, req.Code)
	if err != nil {
		return fail(c, err)
	}
	if req.Consent != nil {
		h.uc.RecordConsent(c.Request().Context(), otp.ConsentInput{
			UserRef: req.Mobile,
			Purpose: req.Consent.Purpose,
			Version: req.Consent.Version,
		})
	}
	return c.JSON(http.StatusOK, res)
}

type withdrawConsentReq struct {
	UserRef string `json:"user_ref" validate:"required"`
	Purpose string `json:"purpose"  validate:"required"`
}

func (h *OTPHandler) WithdrawConsent(c echo.Context) error {
	var req withdrawConsentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.WithdrawConsent(c.Request().Context(), req.UserRef, req.Purpose); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OTPHandler) ListConsents(c echo.Context) error {
	consents, err := h.uc.ListConsents(c.Request().Context(), c.Param("user_ref"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, consents)
}
