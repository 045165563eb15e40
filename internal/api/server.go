// Package api exposes the dashboard over HTTP: JSON endpoints under /api, the
// spreadsheet exports and the websocket feed.
package api

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/booking"
	"condoflow/internal/notify"
	"condoflow/internal/service"
	"condoflow/internal/session"
)

// Deps are the services behind the endpoints.
type Deps struct {
	Auth          *session.Authenticator
	Sessions      *session.Manager
	Reservations  *booking.Service
	Directory     *service.Directory
	Finance       *service.Finance
	Tickets       *service.Tickets
	Feed          *service.Feed
	Notifications *service.Notifications
	Hub           *notify.Hub
}

// Options tune the session cookie and the login throttle.
type Options struct {
	CookieName     string
	SecureCookie   bool
	LoginPerMinute int
	LoginBurst     int
}

// HTTPServer routes requests to the services.
type HTTPServer struct {
	deps     Deps
	opts     Options
	router   *mux.Router
	validate *validator.Validate
	limiter  *loginLimiter
	logger   zerolog.Logger
}

func NewHTTPServer(deps Deps, opts Options, logger zerolog.Logger) *HTTPServer {
	if opts.CookieName == "" {
		opts.CookieName = "condoflow_session"
	}
	if opts.LoginPerMinute <= 0 {
		opts.LoginPerMinute = 10
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}

	s := &HTTPServer{
		deps:     deps,
		opts:     opts,
		validate: newValidator(),
		limiter:  newLoginLimiter(time.Minute/time.Duration(opts.LoginPerMinute), opts.LoginBurst),
		logger:   logger.With().Str("component", "api").Logger(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler { return s.router }

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "Rota não encontrada.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "Método não permitido.")
	})
	r.Use(s.recoverPanic, s.requestLogger, s.observe)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/auth/login", s.limitLogin(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authenticate)

	// Session
	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/me", s.handleUpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/me/password", s.handleChangePassword).Methods(http.MethodPut)

	// Reservations
	authed.HandleFunc("/areas", s.handleListAreas).Methods(http.MethodGet)
	authed.HandleFunc("/reservations", s.handleListReservations).Methods(http.MethodGet)
	authed.HandleFunc("/reservations", s.handleCreateReservation).Methods(http.MethodPost)
	authed.HandleFunc("/reservations/availability", s.handleAvailability).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/export", s.handleExportReservations).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id:[0-9]+}", s.handleGetReservation).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id:[0-9]+}", s.handleUpdateReservation).Methods(http.MethodPut)
	authed.HandleFunc("/reservations/{id:[0-9]+}", s.handleDeleteReservation).Methods(http.MethodDelete)
	authed.Handle("/reservations/{id:[0-9]+}/approve",
		s.require(access.ApproveReservations, s.handleApproveReservation)).Methods(http.MethodPost)
	authed.Handle("/reservations/{id:[0-9]+}/reject",
		s.require(access.ApproveReservations, s.handleRejectReservation)).Methods(http.MethodPost)
	authed.Handle("/reservations/{id:[0-9]+}/complete",
		s.require(access.Edit, s.handleCompleteReservation)).Methods(http.MethodPost)

	// Directory
	authed.HandleFunc("/units", s.handleListUnits).Methods(http.MethodGet)
	authed.HandleFunc("/units/stats", s.handleUnitStats).Methods(http.MethodGet)
	authed.Handle("/units", s.require(access.Edit, s.handleCreateUnit)).Methods(http.MethodPost)
	authed.Handle("/units/{id}", s.require(access.Edit, s.handleUpdateUnit)).Methods(http.MethodPut)
	authed.Handle("/units/{id}", s.require(access.Edit, s.handleDeleteUnit)).Methods(http.MethodDelete)
	authed.Handle("/units/{id}/vacate", s.require(access.Edit, s.handleVacateUnit)).Methods(http.MethodPost)

	// Finance
	authed.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/summary", s.handleFinanceSummary).Methods(http.MethodGet)
	authed.Handle("/transactions/chart",
		s.require(access.ViewAllFinancials, s.handleFinanceChart)).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/export", s.handleExportTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/{id:[0-9]+}", s.handleGetTransaction).Methods(http.MethodGet)
	authed.Handle("/transactions", s.require(access.Edit, s.handleCreateTransaction)).Methods(http.MethodPost)
	authed.Handle("/transactions/{id:[0-9]+}",
		s.require(access.Edit, s.handleUpdateTransaction)).Methods(http.MethodPut)
	authed.Handle("/transactions/{id:[0-9]+}",
		s.require(access.Edit, s.handleDeleteTransaction)).Methods(http.MethodDelete)

	// Maintenance
	authed.HandleFunc("/tickets", s.handleListTickets).Methods(http.MethodGet)
	authed.HandleFunc("/tickets", s.handleCreateTicket).Methods(http.MethodPost)
	authed.HandleFunc("/tickets/export", s.handleExportTickets).Methods(http.MethodGet)
	authed.HandleFunc("/tickets/{id:[0-9]+}", s.handleGetTicket).Methods(http.MethodGet)
	authed.Handle("/tickets/{id:[0-9]+}", s.require(access.Edit, s.handleUpdateTicket)).Methods(http.MethodPatch)
	authed.Handle("/tickets/{id:[0-9]+}", s.require(access.Edit, s.handleDeleteTicket)).Methods(http.MethodDelete)

	// Communication
	authed.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	authed.HandleFunc("/posts", s.handleCreatePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}", s.handleDeletePost).Methods(http.MethodDelete)
	authed.HandleFunc("/posts/{id:[0-9]+}/like", s.handleLikePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}/vote", s.handleVotePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}/comments", s.handleCommentPost).Methods(http.MethodPost)

	// Notifications
	authed.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/read-all", s.handleReadAllNotifications).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id:[0-9]+}/read", s.handleReadNotification).Methods(http.MethodPost)

	authed.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	return r
}
