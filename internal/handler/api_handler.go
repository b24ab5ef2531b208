package handler

import (
	"user-account-service/api"
	"user-account-service/internal/domain"

	"github.com/sirupsen/logrus"
)

type APIHandler struct {
	*UserHandler
	*AuthHandler
}

func NewAPIHandler(
	userUseCase domain.UserUseCase,
	authUseCase domain.AuthUseCase,
	logger *logrus.Logger,
	secureCookies bool,
) api.ServerInterface {

	return &APIHandler{
		UserHandler: NewUserHandler(userUseCase, logger),
		AuthHandler: NewAuthHandler(authUseCase, logger, secureCookies),
	}
}
