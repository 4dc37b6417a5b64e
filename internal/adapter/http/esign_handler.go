package http

import (
	"net/http"

	"lendmitra-backend/internal/usecase/esign"

	"github.com/labstack/echo/v4"
)

type ESignHandler struct{ uc *esign.Usecase }

func NewESignHandler(uc *esign.Usecase) *ESignHandler { return &ESignHandler{uc: uc} }

type requestSignatureReq struct {
	ApplicationID string `json:"application_id" validate:"required,hex32"`
	DocumentType  string `json:"document_type"  validate:"required"`
	SignerName    string `json:"signer_name"    validate:"required"`
	SignerMobile  string `json:"signer_mobile"  validate:"required,inmobile"`
}

func (h *ESignHandler) RequestSignature(c echo.Context) error {
	var req requestSignatureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.RequestSignature(c.Request().Context(), esign.RequestInput{
		ApplicationID: req.ApplicationID,
		DocumentType:  req.DocumentType,
		SignerName:    req.SignerName,
		SignerMobile:  req.SignerMobile,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// VerifyToken resolves a signer link. Expired tokens answer 410 Gone
// regardless of where the document stands.
func (h *ESignHandler) VerifyToken(c echo.Context) error {
	res, err := h.uc.VerifyAccessToken(c.Request().Context(), c.Param("token"), c.RealIP())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ESignHandler) CheckStatus(c echo.Context) error {
	dto, err := h.uc.CheckStatus(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ESignHandler) MarkSigned(c echo.Context) error {
	dto, err := h.uc.MarkSigned(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ESignHandler) AuditTrail(c echo.Context) error {
	entries, err := h.uc.AuditTrail(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
