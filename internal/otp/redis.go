// Package otp хранит одноразовые коды входа в Redis.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"user-account-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "otp:"
	codeDigits = 6
)

// RedisService реализует domain.OTPService.
type RedisService struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisService(client redis.UniversalClient, ttl time.Duration) *RedisService {
	return &RedisService{client: client, ttl: ttl}
}

// Generate создает код и сохраняет его для email с ограниченным временем жизни.
// Предыдущий непроверенный код перезаписывается.
func (s *RedisService) Generate(ctx context.Context, email domain.Email) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.client.Set(ctx, key(email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: failed to store otp: %w", domain.ErrCache, err)
	}

	return code, nil
}

// Validate сверяет код. Совпавший код удаляется, повторная проверка вернет ErrOTPNotFound.
func (s *RedisService) Validate(ctx context.Context, code string, email domain.Email) error {
	stored, err := s.client.Get(ctx, key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrOTPNotFound
		}
		return fmt.Errorf("%w: failed to get otp: %w", domain.ErrCache, err)
	}

	if stored != code {
		return domain.ErrOTPMismatch
	}

	// из параллельных проверок одного кода выигрывает только удаливший ключ
	deleted, err := s.client.Del(ctx, key(email)).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to delete otp: %w", domain.ErrCache, err)
	}
	if deleted == 0 {
		return domain.ErrOTPNotFound
	}

	return nil
}

func key(email domain.Email) string {
	return keyPrefix + email.String()
}

func newCode() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
