package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/moltda/pkg/buildinfo"
	"github.com/matzehuels/moltda/pkg/cloud"
	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/homology"
	pkgio "github.com/matzehuels/moltda/pkg/io"
	"github.com/matzehuels/moltda/pkg/pipeline"
	"github.com/matzehuels/moltda/pkg/store"
)

// VectorizeRequest is the body of POST /v1/vectorize.
//
// Diagrams accepts the keyed form {"dim0": [[b, d], ...]} or the engine list
// form; set options.raw when the values are squared filtration values.
type VectorizeRequest struct {
	Name     string           `json:"name,omitempty"`
	Diagrams json.RawMessage  `json:"diagrams"`
	Options  pipeline.Options `json:"options"`
}

// ComputeRequest is the body of POST /v1/compute.
type ComputeRequest struct {
	Name     string           `json:"name,omitempty"`
	Cloud    cloud.Cloud      `json:"cloud"`
	Exact    bool             `json:"exact,omitempty"`
	Periodic bool             `json:"periodic,omitempty"`
	Options  pipeline.Options `json:"options"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleVectorize(w http.ResponseWriter, r *http.Request) {
	var req VectorizeRequest
	req.Options = s.Defaults.Clone()
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Diagrams) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "diagrams are required"))
		return
	}
	opts := req.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	arrays, _, err := s.Runner.DecodeWithCacheInfo(ctx, "request", req.Diagrams, pkgio.FormatJSON, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.Runner.Vectorize(ctx, arrays, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeAndRespond(w, r, req.Name, opts, res)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "no homology engine configured"))
		return
	}
	var req ComputeRequest
	req.Options = s.Defaults.Clone()
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	opts := req.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	hopts := homology.Options{Exact: req.Exact, Periodic: req.Periodic}
	arrays, _, err := s.Runner.ComputeWithCacheInfo(ctx, s.Engine, s.EngineName, req.Cloud, hopts, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.Runner.Vectorize(ctx, arrays, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.storeAndRespond(w, r, req.Name, opts, res)
}

func (s *Server) storeAndRespond(w http.ResponseWriter, r *http.Request, name string, opts pipeline.Options, res *pipeline.Result) {
	rec := store.NewRecord(name, opts, res)
	if err := s.Store.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Info("stored result", "id", rec.ID, "dims", res.Dims, "pairs", res.Stats.Pairs, "cached", res.CacheInfo.ImageHit)
	w.Header().Set("Location", "/v1/results/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	dim, err := strconv.Atoi(chi.URLParam(r, "dim"))
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid dimension %q", chi.URLParam(r, "dim")))
		return
	}
	rec, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	scale := pipeline.DefaultPNGScale
	if rec.Options.PNGScale > 0 {
		scale = rec.Options.PNGScale
	}
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 64 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		scale = n
	}

	for i, d := range rec.Result.Dims {
		if d != dim {
			continue
		}
		var buf bytes.Buffer
		if err := pkgio.WritePNG(rec.Result.Images[i], scale, &buf); err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}
	s.writeError(w, errors.New(errors.ErrCodeNotFound, "record %s has no dimension %d", rec.ID, dim))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeEngineFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
