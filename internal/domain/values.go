package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 15

	minUTCOffsetMinutes = -12 * 60
	maxUTCOffsetMinutes = 14 * 60
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_*\-]+$`)
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	offsetPattern   = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)
	legacyTZPattern = regexp.MustCompile(`^Etc/GMT([+-])(\d{1,2})$`)
)

// Username хранит проверенное имя пользователя.
type Username string

// NewUsername валидирует имя пользователя: длина 3..15, символы [a-zA-Z0-9_*-].
func NewUsername(value string) (Username, error) {
	if value == "" {
		return "", ErrEmptyUsername
	}

	if n := utf8.RuneCountInString(value); n < MinUsernameLength || n > MaxUsernameLength {
		return "", fmt.Errorf("%w: got %d characters", ErrInvalidUsernameLength, n)
	}

	if !usernamePattern.MatchString(value) {
		return "", ErrInvalidUsernameCharacters
	}

	return Username(value), nil
}

func (u Username) String() string { return string(u) }

// Email хранит проверенный адрес электронной почты.
type Email string

// NewEmail валидирует адрес электронной почты.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptyEmail
	}

	if !emailPattern.MatchString(value) {
		return "", ErrInvalidEmail
	}

	return Email(value), nil
}

func (e Email) String() string { return string(e) }

// UTCOffset хранит смещение от UTC в минутах.
// Каноническая форма записи: "+03:00", "-05:30".
type UTCOffset int

// ParseUTCOffset разбирает смещение в формате "±HH:MM".
// Для совместимости принимаются и зоны вида "Etc/GMT+3", у которых знак инвертирован
// (Etc/GMT+3 соответствует -03:00).
func ParseUTCOffset(value string) (UTCOffset, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrEmptyUTCOffset
	}

	var minutes int
	switch {
	case offsetPattern.MatchString(value):
		m := offsetPattern.FindStringSubmatch(value)
		hours, _ := strconv.Atoi(m[2])
		mins, _ := strconv.Atoi(m[3])
		if mins >= 60 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidUTCOffset, value)
		}
		minutes = hours*60 + mins
		if m[1] == "-" {
			minutes = -minutes
		}
	case legacyTZPattern.MatchString(value):
		m := legacyTZPattern.FindStringSubmatch(value)
		hours, _ := strconv.Atoi(m[2])
		minutes = hours * 60
		if m[1] == "+" {
			minutes = -minutes
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUTCOffset, value)
	}

	return NewUTCOffset(minutes)
}

// NewUTCOffset создает смещение из количества минут с проверкой диапазона.
func NewUTCOffset(minutes int) (UTCOffset, error) {
	if minutes < minUTCOffsetMinutes || minutes > maxUTCOffsetMinutes {
		return 0, fmt.Errorf("%w: %d minutes is out of range", ErrInvalidUTCOffset, minutes)
	}
	return UTCOffset(minutes), nil
}

// MustParseUTCOffset используется для констант и в тестах.
func MustParseUTCOffset(value string) UTCOffset {
	off, err := ParseUTCOffset(value)
	if err != nil {
		panic(err)
	}
	return off
}

func (o UTCOffset) Minutes() int { return int(o) }

func (o UTCOffset) String() string {
	sign := '+'
	m := int(o)
	if m < 0 {
		sign = '-'
		m = -m
	}
	return fmt.Sprintf("%c%02d:%02d", sign, m/60, m%60)
}

// Location возвращает фиксированную временную зону для смещения.
func (o UTCOffset) Location() *time.Location {
	return time.FixedZone("UTC"+o.String(), int(o)*60)
}
