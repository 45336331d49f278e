package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/redis/go-redis/v9"

	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/service"
)

const sessionCookie = "session"

type userKey struct{}

func userFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey{}).(*model.User)
	return u
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}
		u, err := h.shop.Accounts.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := service.RequireAdmin(userFrom(r.Context())); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter caps requests per client IP in fixed windows. Counters live in Redis
// when a client is configured and in process memory otherwise.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]window
}

type window struct {
	count int64
	reset time.Time
}

// NewRateLimiter returns nil when limit is zero, which disables limiting.
func NewRateLimiter(client *redis.Client, limit int, period time.Duration) *RateLimiter {
	if limit <= 0 {
		return nil
	}
	return &RateLimiter{
		client:  client,
		limit:   int64(limit),
		period:  period,
		now:     time.Now,
		windows: make(map[string]window),
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := l.hit(r.Context(), clientIP(r))
		if err != nil {
			// Fail open on Redis errors.
			slog.Warn("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count > l.limit {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", l.period.Seconds()))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	if l.client != nil {
		key := rateLimitKey(ip)
		var incr *redis.IntCmd
		// INCR and EXPIRE NX run as one MULTI so a counter never outlives its window.
		_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, l.period)
			return nil
		})
		if err != nil {
			return 0, err
		}
		return incr.Val(), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	win := l.windows[ip]
	if !now.Before(win.reset) {
		for k, v := range l.windows {
			if !now.Before(v.reset) {
				delete(l.windows, k)
			}
		}
		win = window{reset: now.Add(l.period)}
	}
	win.count++
	l.windows[ip] = win
	return win.count, nil
}

func rateLimitKey(ip string) string {
	return "rate_limit:" + ip
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type brotliResponseWriter struct {
	http.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func (w *brotliResponseWriter) Write(b []byte) (int, error) {
	w.Header().Del("Content-Length")
	return w.bw.Write(b)
}

// Brotli compresses responses for clients that accept br.
func Brotli(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		if !acceptsBrotli(r.Header.Get("Accept-Encoding")) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
		defer bw.Close()
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, bw: bw}, r)
	})
}

func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.TrimSpace(enc) != "br" {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}
