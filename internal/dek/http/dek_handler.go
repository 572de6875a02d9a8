// Package http provides HTTP handlers for the DEK lifecycle.
// Every prompting endpoint may block until the local authenticator answers.
package http

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
	dekDomain "github.com/l2obin/dekbind/internal/dek/domain"
	"github.com/l2obin/dekbind/internal/dek/http/dto"
	dekUseCase "github.com/l2obin/dekbind/internal/dek/usecase"
	apperrors "github.com/l2obin/dekbind/internal/errors"
	"github.com/l2obin/dekbind/internal/httputil"
	customValidation "github.com/l2obin/dekbind/internal/validation"
)

// errNotExposed is returned by GET /v1/dek outside the exposure window.
var errNotExposed = apperrors.Wrap(apperrors.ErrNotFound, "no dek is currently exposed")

// DekHandler handles HTTP requests for DEK operations.
type DekHandler struct {
	manager dekUseCase.DekManager
	logger  *slog.Logger
}

// NewDekHandler creates a new DEK handler.
func NewDekHandler(manager dekUseCase.DekManager, logger *slog.Logger) *DekHandler {
	return &DekHandler{
		manager: manager,
		logger:  logger,
	}
}

// StatusHandler reports what is persisted and exposed.
// GET /v1/status
func (h *DekHandler) StatusHandler(c *gin.Context) {
	status, err := h.manager.Status(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusToResponse(status))
}

// EnsureCredentialHandler returns the bound credential, creating it when absent.
// POST /v1/credential
func (h *DekHandler) EnsureCredentialHandler(c *gin.Context) {
	id, err := h.manager.EnsureCredential(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialToResponse(id))
}

// GenerateHandler generates a fresh DEK and exposes it.
// POST /v1/dek - Returns 201 Created with the end of the exposure window.
func (h *DekHandler) GenerateHandler(c *gin.Context) {
	exposure, err := h.manager.Generate(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ExposureResponse{ExpiresAt: exposure.ExpiresAt})
}

// GetExposedHandler returns the exposed DEK while its window is open.
// GET /v1/dek - Returns 404 once the DEK has been zeroed.
func (h *DekHandler) GetExposedHandler(c *gin.Context) {
	exposed, ok := h.manager.Exposed()
	if !ok {
		httputil.HandleErrorGin(c, errNotExposed, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.ExposedDekResponse{
		Dek:       exposed.Encoded,
		ExpiresAt: exposed.ExpiresAt,
	})
}

// WrapHandler wraps the exposed DEK and persists the blob.
// POST /v1/dek/wrap
func (h *DekHandler) WrapHandler(c *gin.Context) {
	var req dto.WrapRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.manager.Wrap(c.Request.Context(), req.AllowFallback)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWrapResultToResponse(result))
}

// UnwrapHandler unwraps the given or persisted blob and exposes the DEK.
// POST /v1/dek/unwrap
func (h *DekHandler) UnwrapHandler(c *gin.Context) {
	var req dto.UnwrapRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	var wrapped cryptoDomain.WrappedDek
	if req.Wrapped != "" {
		parsed, err := cryptoDomain.ParseWrappedDek(req.Wrapped)
		if err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}
		wrapped = parsed
	}

	result, err := h.manager.Unwrap(c.Request.Context(), req.AllowFallback, wrapped)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUnwrapResultToResponse(result))
}

// EncryptHandler seals a payload under the exposed DEK.
// POST /v1/dek/encrypt
func (h *DekHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, _ := base64.StdEncoding.DecodeString(req.Plaintext)
	defer cryptoDomain.Zero(plaintext)

	sealed, err := h.manager.Encrypt(c.Request.Context(), plaintext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EncryptResponse{Ciphertext: sealed.String()})
}

// DecryptHandler opens a payload sealed under the exposed DEK.
// POST /v1/dek/decrypt
func (h *DekHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	sealed, err := dekDomain.ParseSealed(req.Ciphertext)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	plaintext, err := h.manager.Decrypt(c.Request.Context(), sealed)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.DecryptResponse{Plaintext: base64.StdEncoding.EncodeToString(plaintext)})
}

// bindOptionalJSON binds the body into req, treating an empty body as the zero request.
func (h *DekHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	return true
}
