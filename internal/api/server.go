package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"time"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/policy"
	"github.com/nhle/taskflow/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Store    store.Store
	Tokens   *auth.TokenIssuer
	PageSize int
	Logger   *log.Logger
}

// Server handles the taskflow HTTP API.
type Server struct {
	store    store.Store
	policy   *policy.Service
	tokens   *auth.TokenIssuer
	pageSize int
	logger   *log.Logger
}

// NewServer creates an API server over the given store and token issuer.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "api: ", log.LstdFlags)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 9
	}
	return &Server{
		store:    opts.Store,
		policy:   policy.NewService(opts.Store),
		tokens:   opts.Tokens,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("GET /tasks", s.authed(s.handleListAllTasks))
	mux.HandleFunc("POST /tasks", s.authed(s.handleCreateTask))
	mux.HandleFunc("GET /tasks/created", s.authed(s.handleListCreated))
	mux.HandleFunc("GET /tasks/assigned", s.authed(s.handleListAssigned))
	mux.HandleFunc("PUT /tasks/{id}", s.authed(s.handleUpdateTask))
	mux.HandleFunc("PATCH /tasks/{id}", s.authed(s.handleUpdateStatus))
	mux.HandleFunc("DELETE /tasks/{id}", s.authed(s.handleDeleteTask))

	mux.HandleFunc("GET /notifications", s.authed(s.handleListNotifications))
	mux.HandleFunc("POST /notifications/read", s.authed(s.handleMarkAllRead))
	mux.HandleFunc("PATCH /notifications/{id}", s.authed(s.handleMarkRead))

	mux.HandleFunc("GET /users/search", s.authed(s.handleSearchUsers))

	return s.recoverHandler(mux)
}

// Serve runs the server on the given address until an interrupt arrives,
// then shuts down gracefully.
func (s *Server) Serve(addr string) error {
	server := &http.Server{
		Addr:     addr,
		Handler:  s.Handler(),
		ErrorLog: s.logger,
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logf("listening on %s", addr)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logf("server stopped: %v", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logf("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		if errors.Is(shutdownErr, http.ErrServerClosed) {
			shutdownErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

// authed wraps a handler with bearer-token authentication. The token is
// verified and resolved to a full user record before the handler runs;
// any failure yields a uniform 401.
func (s *Server) authed(handler func(http.ResponseWriter, *http.Request, model.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, r, auth.ErrInvalidToken)
			return
		}

		userID, err := s.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, r, auth.ErrInvalidToken)
			return
		}

		user, err := s.store.GetUserByID(r.Context(), userID)
		if err != nil {
			// A token for a user that no longer resolves is
			// indistinguishable from an invalid token.
			s.writeError(w, r, auth.ErrInvalidToken)
			return
		}

		handler(w, r, *user)
	}
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeMessage(w, http.StatusInternalServerError, "server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
