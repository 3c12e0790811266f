package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/matzehuels/attacktree/pkg/errors"
	"github.com/matzehuels/attacktree/pkg/graph"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/pipeline"
	"github.com/matzehuels/attacktree/pkg/source"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// LayoutResponse is the body of the layout routes: the wire layout plus
// pipeline metadata.
type LayoutResponse struct {
	graph.Layout
	Empty    bool         `json:"empty"`
	TreeHash string       `json:"tree_hash,omitempty"`
	Issues   []tree.Issue `json:"issues,omitempty"`
	Cached   bool         `json:"cached"`
}

// AssessmentsResponse is the body of the assessment listing.
type AssessmentsResponse struct {
	Source      string              `json:"source"`
	Assessments []source.Assessment `json:"assessments"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, layoutResponse(res))
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	opts, err := diagramOptions(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondDiagram(w, res)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.respondErr(w, r, errNoSource)
		return
	}
	list, err := s.source.List(r.Context())
	if err != nil {
		s.respondErr(w, r, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "list assessments"))
		return
	}
	if list == nil {
		list = []source.Assessment{}
	}
	respondJSON(w, http.StatusOK, AssessmentsResponse{Source: s.source.Name(), Assessments: list})
}

func (s *Server) handleAssessmentLayout(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.respondErr(w, r, errNoSource)
		return
	}
	opts, err := layoutOptions(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	res, err := s.runner.ExecuteAssessment(r.Context(), s.source, chi.URLParam(r, "id"), opts)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, layoutResponse(res))
}

func (s *Server) handleAssessmentDiagram(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.respondErr(w, r, errNoSource)
		return
	}
	opts, err := diagramOptions(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	res, err := s.runner.ExecuteAssessment(r.Context(), s.source, chi.URLParam(r, "id"), opts)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondDiagram(w, res)
}

var errNoSource = apperrors.New(apperrors.ErrCodeUnsupported, "no assessment source configured")

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body")
	}
	return body, nil
}

func layoutResponse(res *pipeline.Result) LayoutResponse {
	return LayoutResponse{
		Layout:   res.Layout,
		Empty:    res.Empty,
		TreeHash: res.TreeHash,
		Issues:   res.Issues,
		Cached:   res.CacheInfo.LayoutHit,
	}
}

func respondDiagram(w http.ResponseWriter, res *pipeline.Result) {
	if res.Empty {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.DiagramHit))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Diagram)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// =============================================================================
// Query Parsing
// =============================================================================

func layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{SkipDiagram: true}

	spacing := layout.DefaultSpacing()
	overrides := []struct {
		name string
		dst  *float64
	}{
		{"base_width", &spacing.BaseWidth},
		{"vertical_base", &spacing.VerticalBase},
		{"vertical_increment", &spacing.VerticalIncrement},
		{"lateral_offset", &spacing.LateralOffset},
	}
	for _, o := range overrides {
		v := q.Get(o.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a number, got %q", o.name, v)
		}
		*o.dst = f
	}
	opts.Spacing = &spacing

	var err error
	if opts.Refresh, err = boolParam(r, "refresh"); err != nil {
		return opts, err
	}
	return opts, nil
}

func diagramOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{Direction: r.URL.Query().Get("direction")}
	flags := []struct {
		name string
		dst  *bool
	}{
		{"styled", &opts.Styled},
		{"fenced", &opts.Fenced},
		{"forest", &opts.Forest},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		v, err := boolParam(r, f.name)
		if err != nil {
			return opts, err
		}
		*f.dst = v
	}
	return opts, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}
