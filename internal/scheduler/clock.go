package scheduler

import (
	"fmt"
	"time"

	"user-account-service/internal/domain"
)

const minutesPerDay = 24 * 60

// ClockTime задает время суток с точностью до минуты.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime разбирает время в формате "HH:MM".
func ParseClockTime(value string) (ClockTime, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// TriggerTime переводит локальное время отправки в UTC для заданного смещения:
// (local - offset) mod 24h.
func TriggerTime(local ClockTime, offset domain.UTCOffset) ClockTime {
	m := local.Hour*60 + local.Minute - offset.Minutes()
	m = (m%minutesPerDay + minutesPerDay) % minutesPerDay
	return ClockTime{Hour: m / 60, Minute: m % 60}
}

// cronSpec возвращает ежедневное расписание в UTC.
func (c ClockTime) cronSpec() string {
	return fmt.Sprintf("CRON_TZ=UTC %d %d * * *", c.Minute, c.Hour)
}
