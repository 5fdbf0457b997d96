package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// PackageResponse is the representation of one package.
type PackageResponse struct {
	PURL       string                `json:"purl"`
	Attributes []meta.AttributeState `json:"attributes"`
}

// ListResponse is the result of a package query.
type ListResponse struct {
	Packages []string `json:"packages"`
}

// AttributeRequest is the body of an attribute update.
type AttributeRequest struct {
	Value json.RawMessage `json:"value"`
	Score meta.Trust      `json:"score"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// pathPURL decodes the {purl} route parameter.
func pathPURL(r *http.Request) (purl.PURL, error) {
	raw, err := url.PathUnescape(chi.URLParam(r, "purl"))
	if err != nil {
		return purl.PURL{}, errors.Wrap(errors.ErrCodeInvalidPURL, err, "malformed coordinate in path")
	}
	return purl.Parse(raw)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pending_tasks": s.reg.Pending()})
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filter{
		Type:      q.Get("type"),
		Namespace: q.Get("namespace"),
		Name:      q.Get("name"),
		Version:   q.Get("version"),
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		f.Limit = n
	}

	pkgs, err := s.reg.Find(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := ListResponse{Packages: make([]string, 0, len(pkgs))}
	for _, pkg := range pkgs {
		resp.Packages = append(resp.Packages, pkg.PURL().Key())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) {
	p, err := pathPURL(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondPackage(w, r, http.StatusOK, p)
}

func (s *Server) respondPackage(w http.ResponseWriter, r *http.Request, status int, p purl.PURL) {
	attrs, err := s.reg.Attributes(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if attrs == nil {
		attrs = []meta.AttributeState{}
	}
	s.writeJSON(w, status, PackageResponse{PURL: p.Key(), Attributes: attrs})
}

func (s *Server) createPackage(w http.ResponseWriter, r *http.Request) {
	p, err := pathPURL(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reg.Edit(r.Context(), p, func(*meta.Editor) error { return nil }); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondPackage(w, r, http.StatusAccepted, p)
}

func (s *Server) putAttribute(w http.ResponseWriter, r *http.Request) {
	p, err := pathPURL(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	field, err := meta.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req AttributeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	if !req.Score.Valid() || int(req.Score) > meta.MaxScore {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "score %d out of range 1..%d", req.Score, meta.MaxScore))
		return
	}
	v, err := meta.DecodeValue(field, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.reg.Edit(r.Context(), p, func(ed *meta.Editor) error {
		return ed.Update(field, req.Score, v)
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondPackage(w, r, http.StatusOK, p)
}
