package domain

import "errors"

// Domain errors (для бизнес-логики)
var (
	// Validation errors
	ErrEmptyUsername             = errors.New("username is empty")
	ErrInvalidUsernameLength     = errors.New("username must be between 3 and 15 characters")
	ErrInvalidUsernameCharacters = errors.New("username contains invalid characters")
	ErrEmptyEmail                = errors.New("email is empty")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrEmptyUTCOffset            = errors.New("utc offset is empty")
	ErrInvalidUTCOffset          = errors.New("invalid utc offset")
	ErrInvalidPagination         = errors.New("invalid pagination parameters")

	// User errors
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user with this email or username already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrUserDeleted           = errors.New("user is deleted")
	ErrUserNotDeleted        = errors.New("user is not deleted")

	// Auth errors
	ErrOTPNotFound  = errors.New("otp code not found")
	ErrOTPMismatch  = errors.New("otp code does not match")
	ErrInvalidToken = errors.New("invalid token")

	// Infrastructure errors
	ErrRepository        = errors.New("repository error")
	ErrBrokerUnavailable = errors.New("message broker unavailable")
	ErrCache             = errors.New("cache error")
	ErrTokenIssue        = errors.New("failed to issue token")

	// Mail transport errors
	ErrMailTransport        = errors.New("mail transport error")
	ErrMailAuthFailed       = errors.New("mail server authentication failed")
	ErrMailRecipientRefused = errors.New("mail recipient refused")
	ErrMailSenderRefused    = errors.New("mail sender refused")
	ErrMailDataError        = errors.New("mail data rejected")
)

// HTTPError для ответа клиенту
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error HTTPError `json:"error"`
}

// ErrorMapping сопоставляет domain ошибки с HTTP ошибками. Порядок важен:
// для ошибки, которая оборачивает несколько domain ошибок, берется первая
// подходящая запись. Порядок групп совпадает с выбором HTTP статуса в handler.
var ErrorMapping = []struct {
	Target error
	HTTP   HTTPError
}{
	// 400
	{ErrEmptyUsername, HTTPError{Code: "INVALID_USERNAME", Message: "username is empty"}},
	{ErrInvalidUsernameLength, HTTPError{Code: "INVALID_USERNAME", Message: "username must be between 3 and 15 characters"}},
	{ErrInvalidUsernameCharacters, HTTPError{Code: "INVALID_USERNAME", Message: "username may contain only latin letters, digits, '_', '*' and '-'"}},
	{ErrEmptyEmail, HTTPError{Code: "INVALID_EMAIL", Message: "email is empty"}},
	{ErrInvalidEmail, HTTPError{Code: "INVALID_EMAIL", Message: "email is invalid"}},
	{ErrEmptyUTCOffset, HTTPError{Code: "INVALID_UTC_OFFSET", Message: "utc offset is empty"}},
	{ErrInvalidUTCOffset, HTTPError{Code: "INVALID_UTC_OFFSET", Message: "utc offset must look like +03:00 and lie within -12:00..+14:00"}},
	{ErrInvalidPagination, HTTPError{Code: "INVALID_PAGINATION", Message: "limit must be within 1..100 and offset must not be negative"}},
	{ErrOTPMismatch, HTTPError{Code: "OTP_MISMATCH", Message: "otp code does not match"}},

	// 401
	{ErrInvalidToken, HTTPError{Code: "INVALID_TOKEN", Message: "token is missing, invalid or expired"}},

	// 404
	{ErrUserNotFound, HTTPError{Code: "NOT_FOUND", Message: "user not found"}},
	{ErrOTPNotFound, HTTPError{Code: "OTP_NOT_FOUND", Message: "otp code not found or expired"}},

	// 409
	{ErrUserAlreadyExists, HTTPError{Code: "USER_EXISTS", Message: "user with this email or username already exists"}},
	{ErrUsernameAlreadyExists, HTTPError{Code: "USERNAME_EXISTS", Message: "username already exists"}},
	{ErrUserDeleted, HTTPError{Code: "USER_DELETED", Message: "user is deleted"}},
	{ErrUserNotDeleted, HTTPError{Code: "USER_NOT_DELETED", Message: "user is not deleted"}},

	// 503
	{ErrRepository, HTTPError{Code: "REPOSITORY_UNAVAILABLE", Message: "storage is temporarily unavailable"}},
	{ErrBrokerUnavailable, HTTPError{Code: "BROKER_UNAVAILABLE", Message: "event broker is temporarily unavailable"}},
	{ErrCache, HTTPError{Code: "CACHE_UNAVAILABLE", Message: "cache is temporarily unavailable"}},

	// 502
	{ErrMailRecipientRefused, HTTPError{Code: "MAIL_FAILED", Message: "recipient address was refused"}},
	{ErrMailAuthFailed, HTTPError{Code: "MAIL_FAILED", Message: "failed to send email"}},
	{ErrMailSenderRefused, HTTPError{Code: "MAIL_FAILED", Message: "failed to send email"}},
	{ErrMailDataError, HTTPError{Code: "MAIL_FAILED", Message: "failed to send email"}},
	{ErrMailTransport, HTTPError{Code: "MAIL_FAILED", Message: "failed to send email"}},
}

// ToHTTPError преобразует domain ошибку (в том числе обернутую) в HTTP ошибку
func ToHTTPError(err error) (HTTPError, bool) {
	for _, m := range ErrorMapping {
		if errors.Is(err, m.Target) {
			return m.HTTP, true
		}
	}
	return HTTPError{}, false
}

// IsValidationError сообщает, что ошибка вызвана некорректными входными данными.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyUsername, ErrInvalidUsernameLength, ErrInvalidUsernameCharacters,
		ErrEmptyEmail, ErrInvalidEmail,
		ErrEmptyUTCOffset, ErrInvalidUTCOffset,
		ErrInvalidPagination,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsMailError сообщает, что ошибка пришла из почтового транспорта.
func IsMailError(err error) bool {
	return errors.Is(err, ErrMailTransport) ||
		errors.Is(err, ErrMailAuthFailed) ||
		errors.Is(err, ErrMailRecipientRefused) ||
		errors.Is(err, ErrMailSenderRefused) ||
		errors.Is(err, ErrMailDataError)
}
