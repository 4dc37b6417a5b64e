package http

import (
	"net/http"

	"lendmitra-backend/internal/adapter/middleware"
	"lendmitra-backend/internal/usecase/application"

	"github.com/labstack/echo/v4"
)

type ApplicationHandler struct{ uc *application.Usecase }

func NewApplicationHandler(uc *application.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type createDraftReq struct {
	ReferralCode    string  `json:"referral_code"`
	Name            string  `json:"name"             validate:"required"`
	Mobile          string  `json:"mobile"           validate:"required,inmobile"`
	Email           string  `json:"email"            validate:"omitempty,email"`
	PAN             string  `json:"pan"              validate:"omitempty,pan"`
	RequestedAmount float64 `json:"requested_amount" validate:"required,gt=0"`
	TenureDays      int     `json:"tenure_days"      validate:"required,gte=1,lte=365"`
	DailyRate       float64 `json:"daily_rate"       validate:"required,gt=0,lte=5"`
}

// CreateDraft is the public entry point for both referral and open flows.
func (h *ApplicationHandler) CreateDraft(c echo.Context) error {
	var req createDraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.CreateDraft(c.Request().Context(), application.CreateDraftInput{
		ReferralCode:    req.ReferralCode,
		Name:            req.Name,
		Mobile:          req.Mobile,
		Email:           req.Email,
		PAN:             req.PAN,
		RequestedAmount: req.RequestedAmount,
		TenureDays:      req.TenureDays,
		DailyRate:       req.DailyRate,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type advanceStageReq struct {
	Target string `json:"target" validate:"required"`
}

func (h *ApplicationHandler) AdvanceStage(c echo.Context) error {
	var req advanceStageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.AdvanceStage(c.Request().Context(), c.Param("application_id"), req.Target)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	dto, err := h.uc.Submit(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Cancel(c echo.Context) error {
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type decideReq struct {
	Decision string  `json:"decision" validate:"required,oneof=approved rejected"`
	Amount   float64 `json:"amount"   validate:"omitempty,gt=0"`
	Comments string  `json:"comments"`
}

// Decide records the caller's approval decision; role and identity come from
// the session, never the body.
func (h *ApplicationHandler) Decide(c echo.Context) error {
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Decide(c.Request().Context(), application.DecideInput{
		ApplicationID: c.Param("application_id"),
		ApproverRole:  middleware.CallerRole(c),
		ApproverID:    middleware.CallerID(c),
		Decision:      req.Decision,
		Amount:        req.Amount,
		Comments:      req.Comments,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
