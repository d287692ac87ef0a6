package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
	"todoList/internal/logger"

	"go.uber.org/zap"
)

type clientWindow struct {
	count   int
	resetAt time.Time
}

// rateLimiter - фиксированное окно на каждый IP.
// Раз в окно истёкшие записи удаляются, чтобы карта не росла бесконечно.
type rateLimiter struct {
	rpm    int
	window time.Duration
	now    func() time.Time

	mtx       sync.Mutex
	clients   map[string]*clientWindow
	nextSweep time.Time
}

func newRateLimiter(rpm int, window time.Duration, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		rpm:     rpm,
		window:  window,
		now:     now,
		clients: make(map[string]*clientWindow),
	}
}

// allow засчитывает запрос клиента и возвращает остаток и время сброса окна
func (l *rateLimiter) allow(ip string, now time.Time) (bool, int, time.Time) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.sweep(now)

	c, ok := l.clients[ip]
	if !ok || !now.Before(c.resetAt) {
		c = &clientWindow{resetAt: now.Add(l.window)}
		l.clients[ip] = c
	}

	if c.count >= l.rpm {
		return false, 0, c.resetAt
	}
	c.count++
	return true, l.rpm - c.count, c.resetAt
}

func (l *rateLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for ip, c := range l.clients {
		if !now.Before(c.resetAt) {
			delete(l.clients, ip)
		}
	}
	l.nextSweep = now.Add(l.window)
}

func (l *rateLimiter) size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.clients)
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIp(r)
		now := l.now()

		allowed, remaining, resetAt := l.allow(ip, now)
		if !allowed {
			logger.Warn("HTTP: Превышен лимит запросов",
				zap.String("client_ip", ip),
				zap.String("request_id", GetRequestID(r.Context())))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Слишком много запросов. Попробуйте позже.",
				"retry_after": int(resetAt.Sub(now).Seconds()),
				"request_id":  GetRequestID(r.Context()),
			})
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		next.ServeHTTP(w, r)
	})
}

// RateLimit ограничивает число запросов с одного IP в минуту
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return newRateLimiter(rpm, time.Minute, time.Now).middleware
}
