package compositor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"timeline-compositor/internal/platform/metrics"
	"timeline-compositor/internal/timeline"

	"github.com/go-chi/chi/v5"
)

// Handler exposes compositor HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/compositions", func(r chi.Router) {
		r.Post("/", h.CreateComposition)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetComposition)
			r.Delete("/", h.DeleteComposition)
			r.Post("/state", h.SetState)
			r.Post("/seek", h.Seek)
			r.Post("/update", h.Update)
			r.Get("/stack", h.Stack)
			r.Post("/objects", h.AddObject)
			r.Route("/objects/{object_id}", func(r chi.Router) {
				r.Patch("/", h.UpdateObject)
				r.Delete("/", h.RemoveObject)
				r.Get("/media-time", h.MediaTime)
			})
		})
	})
}

// CreateComposition handles POST /compositions.
// Body: { "id": "main", "priority": 0, "scan": "start" }, all optional.
func (h *Handler) CreateComposition(w http.ResponseWriter, r *http.Request) {
	var req CreateCompositionRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	id, err := h.svc.CreateComposition(req)
	if err != nil {
		h.fail(w, "create composition failed", err)
		return
	}
	h.updateGauge()
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// GetComposition handles GET /compositions/{id}.
func (h *Handler) GetComposition(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetComposition(compositionID(r))
	if err != nil {
		h.fail(w, "get composition failed", err)
		return
	}
	writeJSON(w, http.StatusOK, compositionView(c))
}

// DeleteComposition handles DELETE /compositions/{id}.
func (h *Handler) DeleteComposition(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteComposition(compositionID(r)); err != nil {
		h.fail(w, "delete composition failed", err)
		return
	}
	h.updateGauge()
	w.WriteHeader(http.StatusNoContent)
}

// AddObject handles POST /compositions/{id}/objects.
// Body: { "id": "bed", "kind": "source", "start": 0, "duration": 10000000000, "priority": 2 }.
func (h *Handler) AddObject(w http.ResponseWriter, r *http.Request) {
	var req AddObjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.svc.AddObject(compositionID(r), req)
	if err != nil {
		h.fail(w, "add object failed", err)
		return
	}
	h.log.Debug("object added",
		slog.String("composition_id", string(compositionID(r))),
		slog.String("object_id", string(id)))
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateObject handles PATCH /compositions/{id}/objects/{object_id}.
func (h *Handler) UpdateObject(w http.ResponseWriter, r *http.Request) {
	var req UpdateObjectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.UpdateObject(compositionID(r), objectID(r), req); err != nil {
		h.fail(w, "update object failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveObject handles DELETE /compositions/{id}/objects/{object_id}.
func (h *Handler) RemoveObject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveObject(compositionID(r), objectID(r)); err != nil {
		h.fail(w, "remove object failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetState handles POST /compositions/{id}/state.
// Body: { "state": "paused" }.
func (h *Handler) SetState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.SetState(compositionID(r), req.State); err != nil {
		h.fail(w, "set state failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Seek handles POST /compositions/{id}/seek.
// Body: { "start": 5000000000, "rate": 1 }.
func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	var req SeekRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Seek(compositionID(r), req); err != nil {
		h.fail(w, "seek failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Update handles POST /compositions/{id}/update.
// Body: { "time": 7000000000 }.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.UpdateAt(compositionID(r), req.Time)
	if err != nil {
		h.fail(w, "update failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stack handles GET /compositions/{id}/stack?t=.
func (h *Handler) Stack(w http.ResponseWriter, r *http.Request) {
	t, ok := queryTime(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	stack, err := h.svc.StackAt(compositionID(r), t)
	if err != nil {
		h.fail(w, "resolve stack failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StackView{Time: t, Stack: stack})
}

// MediaTime handles GET /compositions/{id}/objects/{object_id}/media-time?t=.
func (h *Handler) MediaTime(w http.ResponseWriter, r *http.Request) {
	t, ok := queryTime(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	view, err := h.svc.MediaTime(compositionID(r), objectID(r), t)
	if err != nil {
		h.fail(w, "media time failed", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debug("invalid request body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps err to a status code and writes it with the error text.
func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(msg, slog.String("error", err.Error()))
	} else {
		h.log.Info(msg, slog.Int("status", status), slog.String("error", err.Error()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) updateGauge() {
	if h.metrics != nil {
		h.metrics.SetCompositions(h.svc.Count())
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, timeline.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, timeline.ErrInvalidTransition),
		errors.Is(err, timeline.ErrNotPaused),
		errors.Is(err, timeline.ErrAlreadyMember),
		errors.Is(err, timeline.ErrCompositionCycle),
		errors.Is(err, timeline.ErrReadOnlyProperty),
		errors.Is(err, ErrCompositionExists),
		errors.Is(err, ErrCompositionNested):
		return http.StatusConflict
	case errors.Is(err, timeline.ErrNegativeDuration),
		errors.Is(err, timeline.ErrInvalidSeek),
		errors.Is(err, timeline.ErrNotTimedObject),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrMissingRef):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func compositionID(r *http.Request) timeline.ObjectID {
	return timeline.ObjectID(chi.URLParam(r, "id"))
}

func objectID(r *http.Request) timeline.ObjectID {
	return timeline.ObjectID(chi.URLParam(r, "object_id"))
}

func queryTime(r *http.Request) (uint64, bool) {
	s := r.URL.Query().Get("t")
	if s == "" {
		return 0, true
	}
	t, err := strconv.ParseUint(s, 10, 64)
	return t, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
