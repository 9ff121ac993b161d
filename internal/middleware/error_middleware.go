package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/logger"
)

// apiError is one row of the error-to-response table
type apiError struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order: specific errors first, the store taxonomy last.
var apiErrors = []apiError{
	{apperrors.ErrRegistrationClosed, http.StatusForbidden, dto.ErrorCodeRegistrationClosed, "Registration is disabled"},
	{apperrors.ErrAccountNotFound, http.StatusNotFound, dto.ErrorCodeAccountNotFound, "Account not found."},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Incorrect email or password."},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email is already registered."},
	{apperrors.ErrStudentAlreadyExist, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Student with this ID already exists."},
	{apperrors.ErrImageNameTaken, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Photo name is already in use."},
	{apperrors.ErrAdminNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Admin not found."},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found."},
	{apperrors.ErrNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConstraintViolation, http.StatusConflict, dto.ErrorCodeResourceInvalid, "The change conflicts with existing data"},
	{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeStoreUnavailable, "Storage is unavailable, try again later"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && apperrors.Is(custom.Err, apperrors.ErrValidationFailed, apperrors.ErrPasswordMismatch) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, custom.Error())
		if custom.Field != "" {
			detail = detail.WithField(custom.Field)
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	if errors.Is(err, apperrors.ErrValidationFailed) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	for _, e := range apiErrors {
		if errors.Is(err, e.target) {
			if e.status >= http.StatusInternalServerError {
				logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
			}
			message := e.message
			if custom != nil && custom.Message != "" {
				message = custom.Message
			}
			c.JSON(e.status, dto.NewErrorResponse(dto.NewErrorDetail(e.code, message)))
			return
		}
	}

	// schema errors and anything unclassified are server bugs
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}

// RespondValidationError answers a failed request binding
func RespondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
