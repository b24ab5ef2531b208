package handler

import (
	"net/http"

	"user-account-service/api"
	"user-account-service/internal/domain"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/sirupsen/logrus"
)

// UserHandler обрабатывает HTTP-запросы, связанные с пользователями.
type UserHandler struct {
	*BaseHandler
	userUseCase domain.UserUseCase
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(userUseCase domain.UserUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userUseCase: userUseCase,
	}
}

// CreateUser обрабатывает регистрацию пользователя.
func (h *UserHandler) CreateUser(c echo.Context) error {
	logEntry := h.logRequest(c, "create_user")

	var req api.CreateUserJSONBody
	if err := c.Bind(&req); err != nil {
		logEntry.WithError(err).Warn("Failed to bind request")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", err.Error()))
	}

	var offset string
	if req.UtcOffset != nil {
		offset = *req.UtcOffset
	}
	isSubscribed := req.IsSubscribed != nil && *req.IsSubscribed

	logEntry = logEntry.WithFields(logrus.Fields{
		"username":      req.Username,
		"is_subscribed": isSubscribed,
	})
	logEntry.Info("Creating user")

	user, err := h.userUseCase.CreateUser(c.Request().Context(), req.Username, req.Email, offset, isSubscribed)
	if err != nil {
		logEntry.WithError(err).Error("Failed to create user")
		return respondError(c, err)
	}

	logEntry.WithField("user_oid", user.OID).Info("User created successfully")
	return c.JSON(http.StatusCreated, toAPIUser(user))
}

// ListUsers возвращает страницу пользователей.
func (h *UserHandler) ListUsers(c echo.Context, params api.ListUsersParams) error {
	logEntry := h.logRequest(c, "list_users")

	var filter domain.UserFilter
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}
	if params.Offset != nil {
		filter.Offset = *params.Offset
	}
	filter.IsSubscribed = params.IsSubscribed

	users, total, err := h.userUseCase.ListUsers(c.Request().Context(), filter)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to list users")
		return respondError(c, err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = domain.DefaultUsersLimit
	}

	logEntry.WithField("users_count", len(users)).Info("Users listed successfully")
	return c.JSON(http.StatusOK, api.UserList{
		Users:  toAPIUsers(users),
		Total:  total,
		Limit:  limit,
		Offset: filter.Offset,
	})
}

// GetUser возвращает пользователя по OID.
func (h *UserHandler) GetUser(c echo.Context, userOid openapi_types.UUID) error {
	logEntry := h.logRequest(c, "get_user").WithField("user_oid", userOid)

	user, err := h.userUseCase.GetUser(c.Request().Context(), userOid)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to get user")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toAPIUser(user))
}

// GetUserByUsername возвращает пользователя по имени.
func (h *UserHandler) GetUserByUsername(c echo.Context, username string) error {
	logEntry := h.logRequest(c, "get_user_by_username").WithField("username", username)

	user, err := h.userUseCase.GetUserByUsername(c.Request().Context(), username)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to get user")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toAPIUser(user))
}

// ChangeUsername меняет имя пользователя.
func (h *UserHandler) ChangeUsername(c echo.Context, userOid openapi_types.UUID) error {
	logEntry := h.logRequest(c, "change_username").WithField("user_oid", userOid)

	var req api.ChangeUsernameJSONBody
	if err := c.Bind(&req); err != nil {
		logEntry.WithError(err).Warn("Failed to bind request")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", err.Error()))
	}

	logEntry = logEntry.WithField("new_username", req.Username)
	logEntry.Info("Changing username")

	user, err := h.userUseCase.ChangeUsername(c.Request().Context(), userOid, req.Username)
	if err != nil {
		logEntry.WithError(err).Error("Failed to change username")
		return respondError(c, err)
	}

	logEntry.Info("Username changed successfully")
	return c.JSON(http.StatusOK, toAPIUser(user))
}

// SubscribeUser включает ежедневные напоминания.
func (h *UserHandler) SubscribeUser(c echo.Context, userOid openapi_types.UUID) error {
	logEntry := h.logRequest(c, "subscribe_user").WithField("user_oid", userOid)
	logEntry.Info("Subscribing user")

	user, err := h.userUseCase.Subscribe(c.Request().Context(), userOid)
	if err != nil {
		logEntry.WithError(err).Error("Failed to subscribe user")
		return respondError(c, err)
	}

	logEntry.Info("User subscribed successfully")
	return c.JSON(http.StatusOK, toAPIUser(user))
}

// UnsubscribeUser выключает ежедневные напоминания.
func (h *UserHandler) UnsubscribeUser(c echo.Context, userOid openapi_types.UUID) error {
	logEntry := h.logRequest(c, "unsubscribe_user").WithField("user_oid", userOid)
	logEntry.Info("Unsubscribing user")

	user, err := h.userUseCase.Unsubscribe(c.Request().Context(), userOid)
	if err != nil {
		logEntry.WithError(err).Error("Failed to unsubscribe user")
		return respondError(c, err)
	}

	logEntry.Info("User unsubscribed successfully")
	return c.JSON(http.StatusOK, toAPIUser(user))
}

// DeleteUser мягко удаляет пользователя.
func (h *UserHandler) DeleteUser(c echo.Context, userOid openapi_types.UUID) error {
	logEntry := h.logRequest(c, "delete_user").WithField("user_oid", userOid)
	logEntry.Info("Deleting user")

	if err := h.userUseCase.DeleteUser(c.Request().Context(), userOid); err != nil {
		logEntry.WithError(err).Error("Failed to delete user")
		return respondError(c, err)
	}

	logEntry.Info("User deleted successfully")
	return c.NoContent(http.StatusNoContent)
}

// RestoreUser восстанавливает удаленного пользователя.
func (h *UserHandler) RestoreUser(c echo.Context, userOid openapi_types.UUID) error {
	logEntry := h.logRequest(c, "restore_user").WithField("user_oid", userOid)
	logEntry.Info("Restoring user")

	user, err := h.userUseCase.RestoreUser(c.Request().Context(), userOid)
	if err != nil {
		logEntry.WithError(err).Error("Failed to restore user")
		return respondError(c, err)
	}

	logEntry.Info("User restored successfully")
	return c.JSON(http.StatusOK, toAPIUser(user))
}
