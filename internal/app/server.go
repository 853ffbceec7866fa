package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/repositories/project"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

const (
	defaultListLimit = 20
	maxBody          = 1 << 20
)

// Enhancer is the generative part of the API. It is nil when no generative
// service is configured.
type Enhancer interface {
	Narrate(ctx context.Context, comp *composition.Composition) (int, error)
	Caption(ctx context.Context, comp *composition.Composition, base domain.Transform) []domain.Overlay
}

type Server struct {
	log      logger.Logger
	projects project.Repository
	exports  export.Service
	enhancer Enhancer
}

func NewServer(log logger.Logger, projects project.Repository, exports export.Service, enhancer Enhancer) *Server {
	return &Server{
		log:      log.WithComponent("http"),
		projects: projects,
		exports:  exports,
		enhancer: enhancer,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("GET /projects", s.listProjects)
	mux.HandleFunc("GET /projects/{id}", s.getProject)
	mux.HandleFunc("POST /projects/{id}/publish", s.publish)
	mux.HandleFunc("POST /projects/{id}/narrate", s.narrate)
	mux.HandleFunc("POST /projects/{id}/captions", s.captions)
	return mux
}

type projectResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Duration    time.Duration      `json:"duration"`
	Composition domain.Composition `json:"composition"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type publicationResponse struct {
	Sink   string                   `json:"sink"`
	Status domain.PublicationStatus `json:"status"`
	Error  string                   `json:"error,omitempty"`
}

type publishResponse struct {
	Artifact     domain.Artifact       `json:"artifact"`
	Publications []publicationResponse `json:"publications"`
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Duration:    p.Composition.MasterDuration(),
		Composition: p.Composition,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.log.Debug("Health check request received", "method", r.Method, "url", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.log.Error("Failed to write response", "error", err)
	}
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(w, errors.Wrapf(errors.ErrInvalidInput, "limit %q", raw))
			return
		}
		limit = n
	}
	projects, err := s.projects.List(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, toProjectResponse(p))
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	var meta domain.PublishMetadata
	if err := decode(r, &meta); err != nil {
		s.fail(w, err)
		return
	}
	if meta.Visibility == "" {
		meta.Visibility = domain.VisibilityPublic
	}

	res, err := s.exports.Export(r.Context(), export.Request{ProjectID: r.PathValue("id"), Metadata: meta})
	if err != nil {
		s.fail(w, err)
		return
	}
	out := publishResponse{Artifact: res.Artifact}
	for _, pub := range res.Publications {
		out.Publications = append(out.Publications, publicationResponse{Sink: pub.Sink, Status: pub.Status, Error: pub.Error})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) narrate(w http.ResponseWriter, r *http.Request) {
	var attached int
	s.enhance(w, r, func(ctx context.Context, comp *composition.Composition) error {
		n, err := s.enhancer.Narrate(ctx, comp)
		attached = n
		return err
	}, func() any { return map[string]int{"attached": attached} })
}

func (s *Server) captions(w http.ResponseWriter, r *http.Request) {
	base := domain.Transform{Scale: 1}
	if err := decode(r, &base); err != nil {
		s.fail(w, err)
		return
	}
	var added []domain.Overlay
	s.enhance(w, r, func(ctx context.Context, comp *composition.Composition) error {
		added = s.enhancer.Caption(ctx, comp, base)
		return nil
	}, func() any { return map[string]int{"added": len(added)} })
}

// enhance loads the project, applies fn to its composition and stores the
// result.
func (s *Server) enhance(w http.ResponseWriter, r *http.Request, fn func(context.Context, *composition.Composition) error, result func() any) {
	if s.enhancer == nil {
		s.fail(w, errors.Wrap(errors.ErrInvalidState, "generative service is not configured"))
		return
	}
	ctx := r.Context()
	p, err := s.projects.Get(ctx, r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	comp, err := composition.FromSnapshot(p.Composition)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := fn(ctx, comp); err != nil {
		s.fail(w, err)
		return
	}
	p.Composition = comp.Snapshot()
	if err := s.projects.Update(ctx, p); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, result())
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.WrapWithCode(err, errors.CodeInvalidInput, "decode request body")
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to write response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "code", errors.GetCode(err), "error", err)
	}
	s.respond(w, status, map[string]string{
		"code":  errors.GetCode(err),
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errors.ErrInvalidState):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrEncodeFailure), errors.Is(err, errors.ErrDecodeFailure):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func serverAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
