package http

import (
	"errors"
	"log/slog"
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/review"
)

type handlers struct {
	svc    *review.Service
	grader *review.Grader
	logger *slog.Logger
}

// StatusRequest sets a review decision.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// FixRequest selects the fix level.
type FixRequest struct {
	Level string `json:"level" validate:"required"`
}

// ContentRequest replaces a script's source. Content may be empty but must
// be present.
type ContentRequest struct {
	Content *string `json:"content" validate:"required"`
}

// GradeRequest grades a sample.
type GradeRequest struct {
	Grade string `json:"grade" validate:"required,oneof=Good Bad"`
}

func scriptID(r *stdhttp.Request) string {
	return chi.URLParam(r, "*")
}

func bindError(w stdhttp.ResponseWriter, err error) {
	Detail(w, stdhttp.StatusUnprocessableEntity, err.Error())
}

func (h *handlers) listScripts(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	views, err := h.svc.List(r.Context(), core.Filter{
		Category: q.Get("category"),
		Status:   core.Status(q.Get("status")),
		Quality:  core.Quality(q.Get("quality")),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, map[string]any{"scripts": views, "total": len(views)})
}

func (h *handlers) getScript(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	v, err := h.svc.Get(r.Context(), scriptID(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, v)
}

func (h *handlers) getContent(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	content, err := h.svc.Content(scriptID(r))
	if err != nil {
		// an unreadable file is reported like a missing one
		Detail(w, stdhttp.StatusNotFound, detailNotFound)
		return
	}
	JSON(w, stdhttp.StatusOK, map[string]string{"content": content})
}

func (h *handlers) putContent(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := parseJSON[ContentRequest](r)
	if err != nil {
		bindError(w, err)
		return
	}
	if err := h.svc.UpdateContent(scriptID(r), *req.Content); err != nil {
		h.logger.Warn("content update failed", "id", scriptID(r), "error", err)
		Detail(w, stdhttp.StatusNotFound, detailNotFound)
		return
	}
	JSON(w, stdhttp.StatusOK, map[string]bool{"success": true})
}

func (h *handlers) setStatus(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := parseJSON[StatusRequest](r)
	if err != nil {
		bindError(w, err)
		return
	}
	st, err := h.svc.SetStatus(r.Context(), scriptID(r), req.Status)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, map[string]any{"success": true, "status": st})
}

func (h *handlers) lint(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	res, err := h.svc.Lint(r.Context(), scriptID(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, res)
}

func (h *handlers) fix(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	req, err := parseJSON[FixRequest](r)
	if err != nil {
		bindError(w, err)
		return
	}
	res, err := h.svc.Fix(r.Context(), scriptID(r), req.Level)
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, res)
}

func (h *handlers) run(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	res, err := h.svc.Run(scriptID(r))
	switch {
	case err == nil:
		JSON(w, stdhttp.StatusOK, res)
	case errors.Is(err, core.ErrToolNotFound):
		Detail(w, stdhttp.StatusInternalServerError, detailAhkMissing)
	case errors.Is(err, core.ErrNotFound):
		RespondError(w, err)
	default:
		msg := err.Error()
		if inner := errors.Unwrap(err); inner != nil {
			msg = inner.Error()
		}
		Detail(w, stdhttp.StatusInternalServerError, "Failed to run script: "+msg)
	}
}

func (h *handlers) categories(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, map[string]any{"categories": cats})
}

func (h *handlers) stats(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, st)
}

func (h *handlers) state(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	JSON(w, stdhttp.StatusOK, map[string]any{
		"component": h.svc.ComponentType(),
		"state":     h.svc.State(),
	})
}

func (h *handlers) listSamples(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	samples := h.grader.Samples()
	JSON(w, stdhttp.StatusOK, map[string]any{"samples": samples, "total": len(samples)})
}

func sampleIndex(w stdhttp.ResponseWriter, r *stdhttp.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		Detail(w, stdhttp.StatusBadRequest, "Invalid sample index")
		return 0, false
	}
	return idx, true
}

func (h *handlers) getSample(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	idx, ok := sampleIndex(w, r)
	if !ok {
		return
	}
	v, err := h.grader.Sample(idx)
	if err != nil {
		Detail(w, stdhttp.StatusNotFound, "No samples loaded")
		return
	}
	JSON(w, stdhttp.StatusOK, v)
}

func (h *handlers) gradeSample(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	idx, ok := sampleIndex(w, r)
	if !ok {
		return
	}
	req, err := parseJSON[GradeRequest](r)
	if err != nil {
		bindError(w, err)
		return
	}
	v, err := h.grader.SetGrade(idx, review.Grade(req.Grade))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			Detail(w, stdhttp.StatusNotFound, "No samples loaded")
			return
		}
		RespondError(w, err)
		return
	}
	JSON(w, stdhttp.StatusOK, v)
}
