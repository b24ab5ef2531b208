package handler

import (
	"errors"
	"net/http"

	"user-account-service/api"
	"user-account-service/internal/domain"

	"github.com/labstack/echo/v4"
)

// Вспомогательные функции преобразования доменных моделей в API модели

func toAPIUser(user *domain.User) api.User {
	return api.User{
		Oid:          user.OID,
		Username:     user.Username.String(),
		Email:        user.Email.String(),
		UtcOffset:    user.UTCOffset.String(),
		IsSubscribed: user.IsSubscribed,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toAPIUsers(users []*domain.User) []api.User {
	result := make([]api.User, len(users))
	for i, user := range users {
		result[i] = toAPIUser(user)
	}
	return result
}

func toAPITokens(tokens domain.Tokens) api.Tokens {
	return api.Tokens{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		TokenType:        api.Bearer,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
	}
}

func toErrorResponse(code, message string) api.ErrorResponse {
	var resp api.ErrorResponse
	resp.Error.Code = api.ErrorResponseErrorCode(code)
	resp.Error.Message = message
	return resp
}

func toAPIErrorResponse(httpErr domain.HTTPError) api.ErrorResponse {
	return toErrorResponse(httpErr.Code, httpErr.Message)
}

// respondError отвечает клиенту доменной ошибкой или INTERNAL_ERROR.
func respondError(c echo.Context, err error) error {
	if httpErr, exists := domain.ToHTTPError(err); exists {
		return c.JSON(getHTTPStatusCode(err), toAPIErrorResponse(httpErr))
	}
	return c.JSON(http.StatusInternalServerError, toErrorResponse("INTERNAL_ERROR", "internal server error"))
}

func getHTTPStatusCode(err error) int {
	switch {
	// Bad Request errors (400) - валидация
	case domain.IsValidationError(err), errors.Is(err, domain.ErrOTPMismatch):
		return http.StatusBadRequest

	// Unauthorized (401)
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized

	// Not Found errors (404)
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrOTPNotFound):
		return http.StatusNotFound

	// Conflict errors (409)
	case errors.Is(err, domain.ErrUserAlreadyExists), errors.Is(err, domain.ErrUsernameAlreadyExists),
		errors.Is(err, domain.ErrUserDeleted), errors.Is(err, domain.ErrUserNotDeleted):
		return http.StatusConflict

	// Infrastructure errors (503)
	case errors.Is(err, domain.ErrRepository), errors.Is(err, domain.ErrBrokerUnavailable),
		errors.Is(err, domain.ErrCache):
		return http.StatusServiceUnavailable

	// Mail errors (502)
	case domain.IsMailError(err):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
