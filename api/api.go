// Package api содержит модели и маршруты HTTP API, описанного в openapi.yaml.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for TokensTokenType.
const (
	Bearer TokensTokenType = "Bearer"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error struct {
		Code    ErrorResponseErrorCode `json:"code"`
		Message string                 `json:"message"`
	} `json:"error"`
}

// ErrorResponseErrorCode defines model for ErrorResponse.Error.Code.
type ErrorResponseErrorCode string

// User defines model for User.
type User struct {
	Oid          openapi_types.UUID `json:"oid"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	UtcOffset    string             `json:"utc_offset"`
	IsSubscribed bool               `json:"is_subscribed"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// UserList defines model for UserList.
type UserList struct {
	Users  []User `json:"users"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Tokens defines model for Tokens.
type Tokens struct {
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token"`
	TokenType        TokensTokenType `json:"token_type"`
	AccessExpiresAt  time.Time       `json:"access_expires_at"`
	RefreshExpiresAt time.Time       `json:"refresh_expires_at"`
}

// TokensTokenType defines model for Tokens.TokenType.
type TokensTokenType string

// CreateUserJSONBody defines parameters for CreateUser.
type CreateUserJSONBody struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	UtcOffset    *string `json:"utc_offset,omitempty"`
	IsSubscribed *bool   `json:"is_subscribed,omitempty"`
}

// ListUsersParams defines parameters for ListUsers.
type ListUsersParams struct {
	Limit        *int  `form:"limit,omitempty" json:"limit,omitempty"`
	Offset       *int  `form:"offset,omitempty" json:"offset,omitempty"`
	IsSubscribed *bool `form:"is_subscribed,omitempty" json:"is_subscribed,omitempty"`
}

// ChangeUsernameJSONBody defines parameters for ChangeUsername.
type ChangeUsernameJSONBody struct {
	Username string `json:"username"`
}

// LoginJSONBody defines parameters for Login.
type LoginJSONBody struct {
	Email string `json:"email"`
}

// ConfirmLoginJSONBody defines parameters for ConfirmLogin.
type ConfirmLoginJSONBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /auth/confirm)
	ConfirmLogin(ctx echo.Context) error
	// (POST /auth/login)
	Login(ctx echo.Context) error
	// (POST /auth/refresh)
	RefreshLogin(ctx echo.Context) error
	// (GET /users)
	ListUsers(ctx echo.Context, params ListUsersParams) error
	// (POST /users)
	CreateUser(ctx echo.Context) error
	// (GET /users/by-username/{username})
	GetUserByUsername(ctx echo.Context, username string) error
	// (DELETE /users/{user_oid})
	DeleteUser(ctx echo.Context, userOid openapi_types.UUID) error
	// (GET /users/{user_oid})
	GetUser(ctx echo.Context, userOid openapi_types.UUID) error
	// (PATCH /users/{user_oid}/restore)
	RestoreUser(ctx echo.Context, userOid openapi_types.UUID) error
	// (PATCH /users/{user_oid}/subscribe)
	SubscribeUser(ctx echo.Context, userOid openapi_types.UUID) error
	// (PATCH /users/{user_oid}/unsubscribe)
	UnsubscribeUser(ctx echo.Context, userOid openapi_types.UUID) error
	// (PATCH /users/{user_oid}/username)
	ChangeUsername(ctx echo.Context, userOid openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// ConfirmLogin converts echo context to params.
func (w *ServerInterfaceWrapper) ConfirmLogin(ctx echo.Context) error {
	return w.Handler.ConfirmLogin(ctx)
}

// Login converts echo context to params.
func (w *ServerInterfaceWrapper) Login(ctx echo.Context) error {
	return w.Handler.Login(ctx)
}

// RefreshLogin converts echo context to params.
func (w *ServerInterfaceWrapper) RefreshLogin(ctx echo.Context) error {
	return w.Handler.RefreshLogin(ctx)
}

// ListUsers converts echo context to params.
func (w *ServerInterfaceWrapper) ListUsers(ctx echo.Context) error {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params ListUsersParams
	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	// ------------- Optional query parameter "offset" -------------

	err = runtime.BindQueryParameter("form", true, false, "offset", ctx.QueryParams(), &params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter offset: %s", err))
	}

	// ------------- Optional query parameter "is_subscribed" -------------

	err = runtime.BindQueryParameter("form", true, false, "is_subscribed", ctx.QueryParams(), &params.IsSubscribed)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter is_subscribed: %s", err))
	}

	return w.Handler.ListUsers(ctx, params)
}

// CreateUser converts echo context to params.
func (w *ServerInterfaceWrapper) CreateUser(ctx echo.Context) error {
	return w.Handler.CreateUser(ctx)
}

// GetUserByUsername converts echo context to params.
func (w *ServerInterfaceWrapper) GetUserByUsername(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "username" -------------
	var username string

	err = runtime.BindStyledParameterWithOptions("simple", "username", ctx.Param("username"), &username, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter username: %s", err))
	}

	return w.Handler.GetUserByUsername(ctx, username)
}

// DeleteUser converts echo context to params.
func (w *ServerInterfaceWrapper) DeleteUser(ctx echo.Context) error {
	userOid, err := bindUserOid(ctx)
	if err != nil {
		return err
	}
	return w.Handler.DeleteUser(ctx, userOid)
}

// GetUser converts echo context to params.
func (w *ServerInterfaceWrapper) GetUser(ctx echo.Context) error {
	userOid, err := bindUserOid(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetUser(ctx, userOid)
}

// RestoreUser converts echo context to params.
func (w *ServerInterfaceWrapper) RestoreUser(ctx echo.Context) error {
	userOid, err := bindUserOid(ctx)
	if err != nil {
		return err
	}
	return w.Handler.RestoreUser(ctx, userOid)
}

// SubscribeUser converts echo context to params.
func (w *ServerInterfaceWrapper) SubscribeUser(ctx echo.Context) error {
	userOid, err := bindUserOid(ctx)
	if err != nil {
		return err
	}
	return w.Handler.SubscribeUser(ctx, userOid)
}

// UnsubscribeUser converts echo context to params.
func (w *ServerInterfaceWrapper) UnsubscribeUser(ctx echo.Context) error {
	userOid, err := bindUserOid(ctx)
	if err != nil {
		return err
	}
	return w.Handler.UnsubscribeUser(ctx, userOid)
}

// ChangeUsername converts echo context to params.
func (w *ServerInterfaceWrapper) ChangeUsername(ctx echo.Context) error {
	userOid, err := bindUserOid(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ChangeUsername(ctx, userOid)
}

func bindUserOid(ctx echo.Context) (openapi_types.UUID, error) {
	// ------------- Path parameter "user_oid" -------------
	var userOid openapi_types.UUID

	err := runtime.BindStyledParameterWithOptions("simple", "user_oid", ctx.Param("user_oid"), &userOid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return userOid, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter user_oid: %s", err))
	}
	return userOid, nil
}

// EchoRouter is an interface for *echo.Echo and *echo.Group.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the paths,
// so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/auth/confirm", wrapper.ConfirmLogin)
	router.POST(baseURL+"/auth/login", wrapper.Login)
	router.POST(baseURL+"/auth/refresh", wrapper.RefreshLogin)
	router.GET(baseURL+"/users", wrapper.ListUsers)
	router.POST(baseURL+"/users", wrapper.CreateUser)
	router.GET(baseURL+"/users/by-username/:username", wrapper.GetUserByUsername)
	router.DELETE(baseURL+"/users/:user_oid", wrapper.DeleteUser)
	router.GET(baseURL+"/users/:user_oid", wrapper.GetUser)
	router.PATCH(baseURL+"/users/:user_oid/restore", wrapper.RestoreUser)
	router.PATCH(baseURL+"/users/:user_oid/subscribe", wrapper.SubscribeUser)
	router.PATCH(baseURL+"/users/:user_oid/unsubscribe", wrapper.UnsubscribeUser)
	router.PATCH(baseURL+"/users/:user_oid/username", wrapper.ChangeUsername)
}
