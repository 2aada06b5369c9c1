// Package api exposes the journal engine over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/journal"
	"github.com/johncui/rapport/pkg/model"
)

// OwnerHeader carries the id of the journal owner on every /api request.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// Options configures NewServer.
type Options struct {
	CORSOrigins []string
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

type Server struct {
	engine *journal.Engine
	opt    Options
	logger *zap.Logger
}

func NewServer(engine *journal.Engine, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if len(opt.CORSOrigins) == 0 {
		opt.CORSOrigins = []string{"*"}
	}
	return &Server{engine: engine, opt: opt, logger: opt.Logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", OwnerHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.opt.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opt.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(requireOwner)

		r.Route("/journal-entries", func(r chi.Router) {
			r.Get("/", s.listEntries)
			r.Post("/", s.createEntry)
			r.Get("/{id}", s.getEntry)
			r.Put("/{id}", s.updateEntry)
			r.Delete("/{id}", s.deleteEntry)
		})
		r.Route("/people", func(r chi.Router) {
			r.Get("/", s.listPeople)
			r.Post("/", s.createPerson)
			r.Get("/{id}", s.getPerson)
			r.Put("/{id}", s.updatePerson)
			r.Delete("/{id}", s.deletePerson)
		})
		r.Route("/connections", func(r chi.Router) {
			r.Get("/", s.listConnections)
			r.Post("/", s.saveConnection)
			r.Put("/{id}", s.updateConnection)
			r.Delete("/{id}", s.deleteConnection)
		})
		r.Get("/social-graph", s.socialGraph)
		r.Route("/visualizations", func(r chi.Router) {
			r.Get("/relationship-strength", s.relationshipStrength)
			r.Get("/interaction-frequency", s.interactionFrequency)
			r.Get("/emotion-timeline/{id}", s.emotionTimeline)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// requireOwner resolves the owner from OwnerHeader. The value must be a UUID.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(OwnerHeader))
		if err != nil {
			writeError(w, model.ErrInvalidOwner)
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey{}, model.OwnerID(id.String()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(r *http.Request) model.OwnerID {
	owner, _ := r.Context().Value(ownerKey{}).(model.OwnerID)
	return owner
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

var (
	errBadID   = errors.New("invalid id")
	errBadBody = errors.New("invalid JSON body")
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadID), errors.Is(err, errBadBody), errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidOwner):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail logs unexpected errors before writing them.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusOf(err) == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeError(w, err)
}
