package handler

import (
	"net/http"
	"time"

	"user-account-service/api"
	"user-account-service/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// AuthHandler обрабатывает вход по одноразовому коду.
type AuthHandler struct {
	*BaseHandler
	authUseCase   domain.AuthUseCase
	secureCookies bool
}

func NewAuthHandler(authUseCase domain.AuthUseCase, logger *logrus.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   NewBaseHandler(logger),
		authUseCase:   authUseCase,
		secureCookies: secureCookies,
	}
}

// Login отправляет код входа на email пользователя.
func (h *AuthHandler) Login(c echo.Context) error {
	logEntry := h.logRequest(c, "login")

	var req api.LoginJSONBody
	if err := c.Bind(&req); err != nil {
		logEntry.WithError(err).Warn("Failed to bind request")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", err.Error()))
	}

	if err := h.authUseCase.Login(c.Request().Context(), req.Email); err != nil {
		logEntry.WithError(err).Warn("Failed to send login code")
		return respondError(c, err)
	}

	logEntry.Info("Login code sent")
	return c.JSON(http.StatusAccepted, map[string]string{"status": "code_sent"})
}

// ConfirmLogin проверяет код, выставляет cookie с токенами и возвращает их в теле.
func (h *AuthHandler) ConfirmLogin(c echo.Context) error {
	logEntry := h.logRequest(c, "confirm_login")

	var req api.ConfirmLoginJSONBody
	if err := c.Bind(&req); err != nil {
		logEntry.WithError(err).Warn("Failed to bind request")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", err.Error()))
	}

	user, tokens, err := h.authUseCase.ConfirmLogin(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to confirm login")
		return respondError(c, err)
	}

	h.setTokenCookies(c, tokens)

	logEntry.WithField("user_oid", user.OID).Info("User logged in")
	return c.JSON(http.StatusOK, toAPITokens(tokens))
}

// RefreshLogin выпускает новую пару токенов по cookie refresh_token.
func (h *AuthHandler) RefreshLogin(c echo.Context) error {
	logEntry := h.logRequest(c, "refresh_login")

	refresh, err := c.Cookie(refreshTokenCookie)
	if err != nil || refresh.Value == "" {
		logEntry.Warn("Refresh token cookie is missing")
		return respondError(c, domain.ErrInvalidToken)
	}

	user, tokens, err := h.authUseCase.RefreshLogin(c.Request().Context(), refresh.Value)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to refresh login")
		return respondError(c, err)
	}

	h.setTokenCookies(c, tokens)

	logEntry.WithField("user_oid", user.OID).Info("Tokens refreshed")
	return c.JSON(http.StatusOK, toAPITokens(tokens))
}

func (h *AuthHandler) setTokenCookies(c echo.Context, tokens domain.Tokens) {
	c.SetCookie(h.cookie(accessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt))
	c.SetCookie(h.cookie(refreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func (h *AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
