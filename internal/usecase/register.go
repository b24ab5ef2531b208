package usecase

import (
	"user-account-service/internal/domain"
	"user-account-service/internal/mediator"
)

// Dependencies содержит инфраструктуру, которая нужна обработчикам команд и запросов.
type Dependencies struct {
	Users            domain.UserRepository
	OTP              domain.OTPService
	Mail             domain.MailSender
	Composer         domain.MailComposer
	Tokens           domain.TokenIssuer
	DefaultUTCOffset domain.UTCOffset
}

// Register регистрирует все команды и запросы в медиаторе.
// События команд публикуются через тот же медиатор.
func Register(m *mediator.Mediator, deps Dependencies) {
	users := NewUserCommands(deps.Users, m, deps.DefaultUTCOffset)
	mediator.RegisterCommand(m, users.CreateUser)
	mediator.RegisterCommand(m, users.ChangeUsername)
	mediator.RegisterCommand(m, users.Subscribe)
	mediator.RegisterCommand(m, users.Unsubscribe)
	mediator.RegisterCommand(m, users.DeleteUser)
	mediator.RegisterCommand(m, users.RestoreUser)

	auth := NewAuthCommands(deps.Users, deps.OTP, deps.Mail, deps.Composer)
	mediator.RegisterCommand(m, auth.Login)
	mediator.RegisterCommand(m, auth.ConfirmLogin)

	queries := NewUserQueries(deps.Users, deps.Tokens)
	mediator.RegisterQuery(m, queries.GetUserByID)
	mediator.RegisterQuery(m, queries.GetUserByUsername)
	mediator.RegisterQuery(m, queries.GetUsers)
	mediator.RegisterQuery(m, queries.GetTokens)
	mediator.RegisterQuery(m, queries.GetUserByRefreshToken)
}

// Requests перечисляет все команды и запросы, без которых процесс не должен стартовать.
func Requests() []any {
	return []any{
		CreateUser{},
		ChangeUsername{},
		Subscribe{},
		Unsubscribe{},
		DeleteUser{},
		RestoreUser{},
		Login{},
		ConfirmLogin{},
		GetUserByID{},
		GetUserByUsername{},
		GetUsers{},
		GetTokens{},
		GetUserByRefreshToken{},
	}
}
