package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/validation"
	"github.com/xtxerr/launchboard/internal/wire"
)

// OptionsResponse is the body of GET /api/options.
type OptionsResponse struct {
	Sites  []dataset.SiteOption `json:"sites"`
	Bounds launch.Bounds        `json:"bounds"`
	Slider dataset.Slider       `json:"slider"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one error.
type ErrorBody struct {
	Code    int32  `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.ReadFile("index.html")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrInternal, err.Error()))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	store := s.engine.Store()
	writeJSON(w, http.StatusOK, OptionsResponse{
		Sites:  store.SiteOptions(),
		Bounds: store.Bounds(),
		Slider: store.SliderMarks(s.cfg.SliderStep),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r, s.engine.Store().Bounds())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.engine.View(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsProtobuf(r) {
		env, err := wire.NewViewEnvelope(requestSeq(w), v)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrInternal, err.Error()))
			return
		}
		w.Header().Set("Content-Type", wire.ContentType)
		if err := wire.NewWriter(w).Write(env); err != nil {
			logging.WithContext(r.Context()).Warn("write view", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// parseSelection reads site, low and high from the query string. A missing
// site or "all" means all sites; a missing bound defaults to the dataset bound.
func parseSelection(r *http.Request, bounds launch.Bounds) (launch.Selection, error) {
	q := r.URL.Query()

	site, err := validation.NormalizeSite(q.Get("site"))
	if err != nil {
		return launch.Selection{}, err
	}

	low, err := parseBound(q.Get("low"), bounds.Min, "low")
	if err != nil {
		return launch.Selection{}, err
	}
	high, err := parseBound(q.Get("high"), bounds.Max, "high")
	if err != nil {
		return launch.Selection{}, err
	}

	return launch.NewSelection(site, low, high), nil
}

func parseBound(raw string, def float64, name string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidRequest, "%s=%q is not a number", name, raw)
	}
	return v, nil
}

func wantsProtobuf(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), wire.ContentType)
}

func requestSeq(w http.ResponseWriter) uint64 {
	seq, _ := strconv.ParseUint(w.Header().Get("X-Request-Id"), 10, 64)
	return seq
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.failures.Add(1)
	status := errors.HTTPStatus(err)

	l := logging.WithContext(r.Context())
	if status >= 500 {
		l.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		l.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	if wantsProtobuf(r) {
		w.Header().Set("Content-Type", wire.ContentType)
		w.WriteHeader(status)
		wire.NewWriter(w).WriteError(requestSeq(w), err)
		return
	}

	code := errors.ErrorToCode(err)
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Name:    errors.CodeName(code),
		Message: err.Error(),
	}})
}

// writeJSON encodes body before writing the header. An unencodable body is
// logged and answered with a 500.
func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Error("encode response", "error", err)
		status = http.StatusInternalServerError
		code := errors.ErrorToCode(errors.ErrInternal)
		data, _ = json.Marshal(ErrorResponse{Error: ErrorBody{
			Code:    code,
			Name:    errors.CodeName(code),
			Message: "response could not be encoded",
		}})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
