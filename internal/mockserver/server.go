// Package mockserver serves a small content delivery GraphQL API for local
// development and end-to-end tests. It checks epi-single and epi-hmac
// Authorization headers the way the real service does.
package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	graphql "github.com/llehouerou/go-contentgraph-client"
)

const (
	// Path is where the GraphQL endpoint is mounted.
	Path = "/content/v2"

	defaultMaxSkew = 5 * time.Minute
	maxBodyBytes   = 1 << 20
)

type Server struct {
	auth    graphql.Settings
	store   *Store
	logger  graphql.Logger
	now     func() time.Time
	maxSkew time.Duration

	mu     sync.Mutex
	nonces map[string]time.Time

	router chi.Router
}

type Option func(*Server)

// WithStore replaces the sample content.
func WithStore(store *Store) Option {
	return func(s *Server) { s.store = store }
}

func WithLogger(logger graphql.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock sets the clock HMAC timestamps are checked against.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithMaxSkew sets how far an HMAC timestamp may drift from the clock.
func WithMaxSkew(d time.Duration) Option {
	return func(s *Server) { s.maxSkew = d }
}

// New returns a server expecting the credentials of auth; its Endpoint is
// ignored.
func New(auth graphql.Settings, opts ...Option) (*Server, error) {
	s := &Server{
		auth:    auth,
		store:   DefaultStore(),
		logger:  nopLogger{},
		now:     time.Now,
		maxSkew: defaultMaxSkew,
		nonces:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}

	schema, err := gql.ParseSchema(schemaSDL, &resolver{store: s.store})
	if err != nil {
		return nil, fmt.Errorf("problem parsing mock schema: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(s.authenticate).Method(http.MethodPost, Path, &relay.Handler{Schema: schema})
	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Infof("mock content API listening on http://%s%s", addr, Path)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debugf("%s %s -> %d in %s", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start))
	})
}

// authenticate rejects requests whose Authorization header does not match
// the configured mode.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		switch s.auth.AuthMode {
		case graphql.AuthSingle:
			if header != graphql.SingleKeyScheme+" "+s.auth.SingleKey {
				s.reject(w, "invalid single key")
				return
			}
		case graphql.AuthHMAC:
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				s.reject(w, "unreadable body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			if err := s.verifyHMAC(header, r.Method, r.URL.RequestURI(), body); err != nil {
				s.reject(w, err.Error())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) verifyHMAC(header, method, pathAndQuery string, body []byte) error {
	if err := graphql.VerifyHMAC(header, s.auth.AppKey, s.auth.Secret, method, pathAndQuery, body); err != nil {
		return err
	}
	creds, _ := graphql.ParseHMACHeader(header) // already validated
	ts, _ := strconv.ParseInt(creds.Timestamp, 10, 64)
	now := s.now()
	if skew := now.Sub(time.Unix(ts, 0)).Abs(); skew > s.maxSkew {
		return fmt.Errorf("timestamp outside the allowed window by %s", skew-s.maxSkew)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for nonce, seen := range s.nonces {
		if now.Sub(seen) > s.maxSkew {
			delete(s.nonces, nonce)
		}
	}
	if _, ok := s.nonces[creds.Nonce]; ok {
		return errors.New("nonce already used")
	}
	s.nonces[creds.Nonce] = now
	return nil
}

func (s *Server) reject(w http.ResponseWriter, reason string) {
	s.logger.Warnf("rejected request: %s", reason)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]string{{"message": reason}},
	})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
