package auth

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginLimiter throttles failed login attempts per client IP and email.
// Counting uses a fixed window that starts at the first failure; reaching
// the limit locks the pair out for the lockout duration.
type LoginLimiter struct {
	mu              sync.RWMutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LoginLimitConfig contains configuration for the login limiter.
type LoginLimitConfig struct {
	MaxAttempts     int           // Failures allowed inside the window (default: 5)
	WindowDuration  time.Duration // Window for counting failures (default: 15m)
	LockoutDuration time.Duration // Lockout once the limit is reached (default: 30m)
	CleanupInterval time.Duration // Expired record sweep interval (default: 5m)
}

// NewLoginLimiter creates a limiter and starts its cleanup goroutine.
func NewLoginLimiter(cfg LoginLimitConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	l := &LoginLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go l.cleanupLoop()

	return l
}

// Stop stops the background cleanup goroutine. Safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func attemptKey(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether another attempt is permitted and, if not, how long
// the caller has to wait.
func (l *LoginLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := l.now()

	l.mu.RLock()
	record, exists := l.attempts[attemptKey(ip, email)]
	l.mu.RUnlock()

	if !exists {
		return true, 0
	}
	if !record.lockedUntil.IsZero() && now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	if now.Sub(record.firstAttempt) > l.windowDuration {
		return true, 0
	}
	if record.count < l.maxAttempts {
		return true, 0
	}
	return false, l.lockoutDuration
}

// RecordFailure counts a failed attempt and reports whether it triggered a
// lockout.
func (l *LoginLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	key := attemptKey(ip, email)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, exists := l.attempts[key]
	if !exists {
		record = &attemptRecord{firstAttempt: now}
		l.attempts[key] = record
	}

	if now.Sub(record.firstAttempt) > l.windowDuration {
		record.count = 0
		record.firstAttempt = now
		record.lockedUntil = time.Time{}
	}

	record.count++

	if record.count >= l.maxAttempts {
		record.lockedUntil = now.Add(l.lockoutDuration)
		return true, l.lockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets earlier failures for the pair.
func (l *LoginLimiter) RecordSuccess(ip, email string) {
	l.mu.Lock()
	delete(l.attempts, attemptKey(ip, email))
	l.mu.Unlock()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *LoginLimiter) cleanup() {
	now := l.now()
	expiry := l.windowDuration + l.lockoutDuration

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, record := range l.attempts {
		windowExpired := now.Sub(record.firstAttempt) > expiry
		lockoutExpired := record.lockedUntil.IsZero() || now.After(record.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(l.attempts, key)
		}
	}
}

// RetryAfterSeconds renders a wait as whole seconds for the Retry-After header.
func RetryAfterSeconds(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// Middleware rejects login requests for a locked-out IP and email pair with
// 429. The email is read from the query string.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		email := c.Query("email")
		if email == "" {
			c.Next()
			return
		}

		allowed, retryAfter := l.Allow(c.ClientIP(), email)
		if !allowed {
			c.Header("Retry-After", RetryAfterSeconds(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Too many login attempts. Try again later.",
				"code":   "rate_limited",
			})
			return
		}

		c.Next()
	}
}
