package http

import (
	"errors"
	"net/http"

	domainApp "lendmitra-backend/internal/domain/application"
	domainApproval "lendmitra-backend/internal/domain/approval"
	domainConsent "lendmitra-backend/internal/domain/consent"
	domainESign "lendmitra-backend/internal/domain/esign"
	domainMandate "lendmitra-backend/internal/domain/mandate"
	domainVerification "lendmitra-backend/internal/domain/verification"
	"lendmitra-backend/internal/provider"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// fail maps domain errors onto conventional REST status codes. Provider
// failures surface as 502 with the provider's message; anything unmapped is
// a 500 with a generic body (detail stays in server logs).
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domainVerification.ErrInvalidFormat),
		errors.Is(err, domainConsent.ErrInvalidMobile),
		errors.Is(err, domainConsent.ErrExpired),
		errors.Is(err, domainConsent.ErrAttemptsExceeded),
		errors.Is(err, domainConsent.ErrCodeMismatch):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domainApp.ErrInvalidReferralCode):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domainApp.ErrNotFound),
		errors.Is(err, domainESign.ErrNotFound),
		errors.Is(err, domainMandate.ErrNotFound),
		errors.Is(err, domainConsent.ErrOTPNotFound),
		errors.Is(err, domainConsent.ErrConsentNotFound),
		errors.Is(err, domainVerification.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domainESign.ErrTokenExpired):
		return c.JSON(http.StatusGone, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domainApp.ErrInvalidTransition),
		errors.Is(err, domainApp.ErrApplicationFrozen),
		errors.Is(err, domainApproval.ErrAlreadyDecided),
		errors.Is(err, domainConsent.ErrAlreadyUsed),
		errors.Is(err, domainESign.ErrAlreadySigned):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}

	if pe, ok := provider.IsProviderError(err); ok {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: pe.Message})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
