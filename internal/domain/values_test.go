package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"user-account-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsername(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{name: "valid", value: "alice_01"},
		{name: "valid with star and dash", value: "a*b-c"},
		{name: "min length", value: "abc"},
		{name: "max length", value: "abcdefghijklmno"},
		{name: "empty", value: "", wantErr: domain.ErrEmptyUsername},
		{name: "too short", value: "ab", wantErr: domain.ErrInvalidUsernameLength},
		{name: "too long", value: "abcdefghijklmnop", wantErr: domain.ErrInvalidUsernameLength},
		{name: "space", value: "al ice", wantErr: domain.ErrInvalidUsernameCharacters},
		{name: "cyrillic", value: "алиса", wantErr: domain.ErrInvalidUsernameCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NewUsername(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, got.String())
		})
	}
}

func TestNewEmail(t *testing.T) {
	email, err := domain.NewEmail(" a@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email.String())

	_, err = domain.NewEmail("")
	assert.ErrorIs(t, err, domain.ErrEmptyEmail)

	for _, bad := range []string{"a@x", "ax.com", "a @x.com", "@"} {
		_, err = domain.NewEmail(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail, bad)
	}
}

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		value   string
		minutes int
		text    string
		wantErr error
	}{
		{value: "+03:00", minutes: 180, text: "+03:00"},
		{value: "-05:00", minutes: -300, text: "-05:00"},
		{value: "+05:30", minutes: 330, text: "+05:30"},
		{value: "+00:00", minutes: 0, text: "+00:00"},
		{value: "+14:00", minutes: 840, text: "+14:00"},
		{value: "-12:00", minutes: -720, text: "-12:00"},
		{value: "Etc/GMT+3", minutes: -180, text: "-03:00"},
		{value: "Etc/GMT-5", minutes: 300, text: "+05:00"},
		{value: "", wantErr: domain.ErrEmptyUTCOffset},
		{value: "+15:00", wantErr: domain.ErrInvalidUTCOffset},
		{value: "-13:00", wantErr: domain.ErrInvalidUTCOffset},
		{value: "+03:60", wantErr: domain.ErrInvalidUTCOffset},
		{value: "3", wantErr: domain.ErrInvalidUTCOffset},
		{value: "Europe/Moscow", wantErr: domain.ErrInvalidUTCOffset},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.value), func(t *testing.T) {
			got, err := domain.ParseUTCOffset(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, got.Minutes())
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestToHTTPError_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: failed to get user: %w", domain.ErrRepository, assertAnError)

	httpErr, ok := domain.ToHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "REPOSITORY_UNAVAILABLE", httpErr.Code)

	_, ok = domain.ToHTTPError(assertAnError)
	assert.False(t, ok)
}

func TestToHTTPError_JoinedErrorsResolveInMappingOrder(t *testing.T) {
	joined := errors.Join(
		fmt.Errorf("smtp: %w", domain.ErrMailTransport),
		fmt.Errorf("log: %w", domain.ErrMailRecipientRefused),
	)

	for range 20 {
		httpErr, ok := domain.ToHTTPError(joined)
		require.True(t, ok)
		assert.Equal(t, "recipient address was refused", httpErr.Message)
	}

	httpErr, ok := domain.ToHTTPError(errors.Join(domain.ErrMailDataError, domain.ErrRepository))
	require.True(t, ok)
	assert.Equal(t, "REPOSITORY_UNAVAILABLE", httpErr.Code)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, domain.IsValidationError(fmt.Errorf("%w: got 2 characters", domain.ErrInvalidUsernameLength)))
	assert.False(t, domain.IsValidationError(domain.ErrUserNotFound))
	assert.True(t, domain.IsMailError(fmt.Errorf("rcpt: %w", domain.ErrMailRecipientRefused)))
	assert.False(t, domain.IsMailError(domain.ErrRepository))
}

var assertAnError = fmt.Errorf("connection reset")
