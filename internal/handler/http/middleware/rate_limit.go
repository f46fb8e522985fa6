package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/sistema-nomina/backend-nomina/internal/handler/http/response"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/jwt"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per key.
type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}

	return limiter
}

// RateLimitByUser limits requests per authenticated user, falling back to the client IP.
// A non-positive rate disables limiting.
func RateLimitByUser(r rate.Limit, b int) func(http.Handler) http.Handler {
	limiter := NewKeyedRateLimiter(r, b)
	return func(next http.Handler) http.Handler {
		if r <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.GetLimiter(rateLimitKey(req)).Allow() {
				response.TooManyRequests(w, "Demasiadas solicitudes. Intenta de nuevo en unos segundos")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if claims, err := jwt.ClaimsFromContext(r.Context()); err == nil && claims.UserID > 0 {
		return "user:" + strconv.FormatInt(claims.UserID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
