package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	ServerPort     string
	LogLevel       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StreamGroup     string
	StreamConsumer  string
	StreamBatchSize int64
	StreamBlock     time.Duration
	StreamMaxLen    int64
	PublishTimeout  time.Duration

	ReminderSendTime string
	DefaultUTCOffset string
	MailConcurrency  int64
	MailSendTimeout  time.Duration

	MailDriver      string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPDialTimeout time.Duration

	MainPageURL    string
	UnsubscribeURL string
	ConfirmURL     string

	OTPTTL          time.Duration
	TokenSecretKey  string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieSecure    bool
}

const (
	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
	MailDriverBoth = "smtp+log"
)

// minTokenSecretLength соответствует размеру ключа HS256.
const minTokenSecretLength = 32

// LoadConfig читает .env (если он есть) и переменные окружения.
// Ошибка означает только отсутствие .env, значения по умолчанию при этом заполнены.
func LoadConfig() (Config, error) {
	err := godotenv.Load()
	return fromEnv(), err
}

// Reload перечитывает .env поверх текущего окружения.
func Reload() (Config, error) {
	err := godotenv.Overload()
	return fromEnv(), err
}

func fromEnv() Config {
	host, _ := os.Hostname()

	return Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "users"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StreamGroup:     getEnv("STREAM_GROUP", "reminder-scheduler"),
		StreamConsumer:  getEnv("STREAM_CONSUMER", "scheduler-"+host),
		StreamBatchSize: int64(getEnvInt("STREAM_BATCH_SIZE", 50)),
		StreamBlock:     getEnvDuration("STREAM_BLOCK", 5*time.Second),
		StreamMaxLen:    int64(getEnvInt("STREAM_MAX_LEN", 0)),
		PublishTimeout:  getEnvDuration("PUBLISH_TIMEOUT", 3*time.Second),

		ReminderSendTime: getEnv("REMINDER_SEND_TIME", "07:00"),
		DefaultUTCOffset: getEnv("DEFAULT_UTC_OFFSET", "+03:00"),
		MailConcurrency:  int64(getEnvInt("MAIL_CONCURRENCY", 4)),
		MailSendTimeout:  getEnvDuration("MAIL_SEND_TIMEOUT", 30*time.Second),

		MailDriver:      strings.ToLower(getEnv("MAIL_DRIVER", MailDriverLog)),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@localhost"),
		SMTPDialTimeout: getEnvDuration("SMTP_DIAL_TIMEOUT", 10*time.Second),

		MainPageURL:    getEnv("MAIN_PAGE_URL", "http://localhost:3000"),
		UnsubscribeURL: getEnv("UNSUBSCRIBE_URL", "http://localhost:3000/unsubscribe"),
		ConfirmURL:     getEnv("CONFIRM_URL", "http://localhost:3000/confirm"),

		OTPTTL:          getEnvDuration("OTP_TTL", 10*time.Minute),
		TokenSecretKey:  getEnv("TOKEN_SECRET_KEY", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CookieSecure:    getEnvBool("COOKIE_SECURE", false),
	}
}

// Validate проверяет значения, без которых сервис работать не может.
func (c Config) Validate() error {
	var errs []error

	if _, err := time.Parse("15:04", c.ReminderSendTime); err != nil {
		errs = append(errs, fmt.Errorf("REMINDER_SEND_TIME must be HH:MM, got %q", c.ReminderSendTime))
	}
	if c.MailConcurrency < 1 {
		errs = append(errs, errors.New("MAIL_CONCURRENCY must be positive"))
	}
	if c.StreamBlock <= 0 {
		errs = append(errs, errors.New("STREAM_BLOCK must be positive"))
	}
	if c.PublishTimeout <= 0 {
		errs = append(errs, errors.New("PUBLISH_TIMEOUT must be positive"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if len(c.TokenSecretKey) < minTokenSecretLength {
		errs = append(errs, fmt.Errorf("TOKEN_SECRET_KEY must be at least %d bytes, got %d", minTokenSecretLength, len(c.TokenSecretKey)))
	}
	switch c.MailDriver {
	case MailDriverSMTP, MailDriverLog, MailDriverBoth:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}
