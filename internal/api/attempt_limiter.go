package api

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// attemptLimiter counts failed attempts per key inside a sliding window. Each
// failure remembers the subject (usually a username) it targeted.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	attempts map[string][]failedAttempt
}

type failedAttempt struct {
	at      time.Time
	subject string
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]failedAttempt),
	}
}

func (limiter *attemptLimiter) blocked(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return len(limiter.pruneLocked(key, now)) >= limiter.limit
}

func (limiter *attemptLimiter) addFailure(key string, subject string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.attempts[key] = append(limiter.pruneLocked(key, now), failedAttempt{at: now, subject: subject})
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.attempts, key)
}

// forget drops the failures key recorded against subject. Failures against
// other subjects keep counting.
func (limiter *attemptLimiter) forget(key string, subject string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	kept := slices.DeleteFunc(limiter.attempts[key], func(attempt failedAttempt) bool {
		return attempt.subject == subject
	})
	if len(kept) == 0 {
		delete(limiter.attempts, key)
		return
	}
	limiter.attempts[key] = kept
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time) []failedAttempt {
	threshold := now.Add(-limiter.window)
	kept := slices.DeleteFunc(limiter.attempts[key], func(attempt failedAttempt) bool {
		return !attempt.at.After(threshold)
	})
	if len(kept) == 0 {
		delete(limiter.attempts, key)
		return nil
	}
	limiter.attempts[key] = kept
	return kept
}

func limiterSubject(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}

func recoveryLimiterKey(c *fiber.Ctx, username string) string {
	return requestLimiterKey(c) + "|" + limiterSubject(username)
}
