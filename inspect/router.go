// Package inspect exposes a read-mostly HTTP view of an [acorn.Container]:
// the registered services, their dependents, and a reload endpoint.
package inspect

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ARTM2000/acorn"
)

// Service is the JSON form of a descriptor.
type Service struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	Kind       string      `json:"kind"`
	Marker     string      `json:"marker"`
	Built      bool        `json:"built"`
	Owner      *uuid.UUID  `json:"owner,omitempty"`
	Requires   []string    `json:"requires"`
	Dependents []uuid.UUID `json:"dependents"`
}

// NewService converts d into its JSON form.
func NewService(d *acorn.Descriptor) Service {
	s := Service{
		ID:         d.ID(),
		Type:       d.Type().String(),
		Kind:       d.Kind().String(),
		Marker:     string(d.Marker()),
		Built:      d.Built(),
		Requires:   []string{},
		Dependents: []uuid.UUID{},
	}
	if owner := d.Owner(); owner != nil {
		id := owner.ID()
		s.Owner = &id
	}
	for _, t := range d.Requires() {
		s.Requires = append(s.Requires, t.String())
	}
	for _, dep := range d.Dependents() {
		s.Dependents = append(s.Dependents, dep.ID())
	}
	return s
}

// Option configures the router.
type Option func(*options)

type options struct {
	log        *slog.Logger
	middleware []func(http.Handler) http.Handler
}

// WithLogger sets the logger used for reload events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMiddleware appends middleware after the built-in request ID and panic
// recovery.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

// NewRouter returns a handler serving:
//
//	GET  /services                   all descriptors in registry order
//	GET  /services/{id}              one descriptor
//	POST /services/{id}/reload       reload, ?cascade=true to follow dependents
//	GET  /markers/{marker}           descriptors carrying a marker
//
// Responses written by the router are consistent with reloads made through
// it. Reloads issued directly on c are not serialized with responses.
func NewRouter(c *acorn.Container, opts ...Option) http.Handler {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{c: c, log: o.log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(o.middleware...)

	r.Get("/services", h.list)
	r.Get("/services/{id}", h.show)
	r.Post("/services/{id}/reload", h.reload)
	r.Get("/markers/{marker}", h.byMarker)
	return r
}

type handler struct {
	mu  sync.RWMutex
	c   *acorn.Container
	log *slog.Logger
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	writeJSON(w, http.StatusOK, services(h.c.ServicesDetails()))
}

func (h *handler) show(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	d, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NewService(d))
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	d, ok := h.lookup(w, r)
	if !ok {
		return
	}

	cascade := false
	if v := r.URL.Query().Get("cascade"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cascade value "+strconv.Quote(v))
			return
		}
		cascade = b
	}

	if err := h.c.Reload(d, cascade); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, acorn.ErrAlreadyShutdown) || errors.Is(err, acorn.ErrNotInitialized) {
			status = http.StatusConflict
		}
		h.log.Error("reload failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("type", d.Type().String()),
			slog.Any("error", err))
		writeError(w, status, err.Error())
		return
	}

	h.log.Info("reloaded over http",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("type", d.Type().String()),
		slog.Bool("cascade", cascade))
	writeJSON(w, http.StatusOK, NewService(d))
}

func (h *handler) byMarker(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := acorn.Marker(chi.URLParam(r, "marker"))
	writeJSON(w, http.StatusOK, services(h.c.ByMarker(m)))
}

// lookup resolves the {id} parameter and writes the error response itself.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (*acorn.Descriptor, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id "+strconv.Quote(raw))
		return nil, false
	}
	d, ok := h.c.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, acorn.ErrServiceNotFound.Error())
		return nil, false
	}
	return d, true
}

func services(descs []*acorn.Descriptor) []Service {
	out := make([]Service, 0, len(descs))
	for _, d := range descs {
		out = append(out, NewService(d))
	}
	return out
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
