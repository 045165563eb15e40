package api

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"condoflow/internal/access"
	"condoflow/internal/metrics"
	"condoflow/internal/session"
)

type contextKey int

const sessionKey contextKey = iota

// statusRecorder captures the response status. It keeps http.Hijacker so the
// websocket upgrade still works behind the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *HTTPServer) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				writeError(w, http.StatusInternalServerError, codeInternal, "Ocorreu um erro inesperado.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogger tags the request with an id, stores a child logger in the
// context and writes one access log line per request.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		logger := s.logger.With().Str("request_id", id).Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("size", rec.size).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *HTTPServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.ObserveHTTP(route, r.Method, rec.status, time.Since(start))
	})
}

// authenticate loads the session from the cookie, the bearer token or, for
// websocket clients that cannot set headers, the access_token parameter.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.tokenFrom(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "Faça login para continuar.")
			return
		}
		sess, err := s.deps.Sessions.Get(r.Context(), token)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("user", sess.Profile.Email)
		})
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPServer) tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(s.opts.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

func actorFrom(r *http.Request) access.Actor {
	sess := sessionFrom(r.Context())
	if sess == nil {
		return access.Actor{}
	}
	return sess.Actor()
}

// require rejects actors lacking capability before the handler runs.
func (s *HTTPServer) require(capability access.Capability, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := actorFrom(r).Require(capability); err != nil {
			s.fail(w, r, err)
			return
		}
		next(w, r)
	})
}

// loginLimiter throttles login attempts per client address.
type loginLimiter struct {
	mu      sync.Mutex
	every   time.Duration
	burst   int
	clients map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	limiterMaxClients = 4096
	limiterIdle       = 10 * time.Minute
)

func newLoginLimiter(every time.Duration, burst int) *loginLimiter {
	return &loginLimiter{
		every:   every,
		burst:   burst,
		clients: make(map[string]*limiterEntry),
	}
}

func (l *loginLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= limiterMaxClients {
			for k, e := range l.clients {
				if now.Sub(e.lastSeen) > limiterIdle {
					delete(l.clients, k)
				}
			}
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *HTTPServer) limitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientAddr(r)) {
			metrics.IncLogin("throttled")
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, codeTooManyRequests,
				"Muitas tentativas de login. Aguarde um instante e tente novamente.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
