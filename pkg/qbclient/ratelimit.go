package qbclient

import (
	"context"
	"sync"
	"time"
)

// rateLimiter ограничивает частоту запросов скользящим окном:
// не более N запросов в секунду и M в минуту.
type rateLimiter struct {
	mu        sync.Mutex
	perSecond int
	perMinute int
	times     []time.Time
}

func newRateLimiter(perSecond, perMinute int) *rateLimiter {
	return &rateLimiter{
		perSecond: perSecond,
		perMinute: perMinute,
	}
}

// wait блокирует до момента, когда следующий запрос укладывается в лимиты.
// Прерывается отменой контекста.
func (r *rateLimiter) wait(ctx context.Context) error {
	for {
		delay := r.reserve()
		if delay <= 0 {
			return nil
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reserve регистрирует запрос, если лимиты позволяют, иначе возвращает
// время ожидания до освобождения окна.
func (r *rateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Отбрасываем записи старше минуты
	cutoff := now.Add(-time.Minute)
	kept := r.times[:0]
	for _, t := range r.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.times = kept

	if len(r.times) >= r.perMinute {
		return time.Minute - now.Sub(r.times[0])
	}

	recent := 0
	secCutoff := now.Add(-time.Second)
	var oldestRecent time.Time
	for _, t := range r.times {
		if t.After(secCutoff) {
			if recent == 0 {
				oldestRecent = t
			}
			recent++
		}
	}
	if recent >= r.perSecond {
		return time.Second - now.Sub(oldestRecent)
	}

	r.times = append(r.times, now)
	return 0
}
