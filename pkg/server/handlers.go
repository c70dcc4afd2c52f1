package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
	"github.com/Sumatoshi-tech/statplot/pkg/render"
)

// Response headers set by the render route.
const (
	HeaderAUROC = "X-Statplot-Auroc"
	HeaderKind  = "X-Statplot-Kind"
)

// Request errors.
var (
	ErrNoData        = errors.New("request needs data or csv")
	ErrAmbiguousData = errors.New("request has both data and csv")
	ErrDataPath      = batch.ErrPathEscapes
)

// DataSource names the table a request reads: a file path or inline CSV.
type DataSource struct {
	Data  string `json:"data,omitempty"`
	CSV   string `json:"csv,omitempty"`
	Sheet string `json:"sheet,omitempty"`
}

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	DataSource

	Format string     `json:"format,omitempty"`
	Theme  string     `json:"theme,omitempty"`
	Plot   batch.Plot `json:"plot"`
}

// DescribeRequest is the body of POST /v1/describe.
type DescribeRequest struct {
	DataSource
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRender(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()
	start := time.Now()

	var req RenderRequest
	if !s.decode(rw, hr, &req) {
		return
	}

	validateErr := batch.ValidatePlot(req.Plot)
	if validateErr != nil {
		s.fail(rw, hr, http.StatusBadRequest, validateErr)

		return
	}

	format, err := render.NormalizeFormat(firstNonEmpty(req.Format, s.opts.Format))
	if err != nil {
		s.fail(rw, hr, http.StatusBadRequest, err)

		return
	}

	theme := s.opts.Theme
	if req.Theme != "" {
		theme, err = plotpage.ParseTheme(req.Theme)
		if err != nil {
			s.fail(rw, hr, http.StatusBadRequest, err)

			return
		}
	}

	table, status, err := s.load(req.DataSource)
	if err != nil {
		s.fail(rw, hr, status, err)

		return
	}

	res, err := batch.Build(table, req.Plot, s.opts.Plot)
	if err != nil {
		s.fail(rw, hr, http.StatusUnprocessableEntity, err)

		return
	}
	defer res.Close()

	var buf bytes.Buffer

	renderErr := render.Write(&buf, res.Figure, render.Options{Format: format, Theme: theme})
	if renderErr != nil {
		s.fail(rw, hr, http.StatusInternalServerError, renderErr)

		return
	}

	s.figures.RecordFigure(ctx, req.Plot.Kind, format, int64(buf.Len()))

	rw.Header().Set("Content-Type", render.ContentType(format))
	rw.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	rw.Header().Set(HeaderKind, req.Plot.Kind)

	if res.AUROC != nil {
		rw.Header().Set(HeaderAUROC, strconv.FormatFloat(*res.AUROC, 'f', -1, 64))
	}

	rw.WriteHeader(http.StatusOK)

	_, writeErr := buf.WriteTo(rw)
	if writeErr != nil {
		s.logger.WarnContext(ctx, "write response failed", slog.Any("error", writeErr))

		return
	}

	s.logger.InfoContext(ctx, "figure rendered",
		slog.String("kind", req.Plot.Kind),
		slog.String("format", format),
		slog.Int("bytes", buf.Len()),
		slog.Duration("took", time.Since(start)))
}

func (s *Server) handleDescribe(rw http.ResponseWriter, hr *http.Request) {
	var req DescribeRequest
	if !s.decode(rw, hr, &req) {
		return
	}

	table, status, err := s.load(req.DataSource)
	if err != nil {
		s.fail(rw, hr, status, err)

		return
	}

	writeJSON(rw, hr, http.StatusOK, batch.Describe(table))
}

// decode reads a JSON body no larger than MaxBodyBytes, answering the
// request itself on failure.
func (s *Server) decode(rw http.ResponseWriter, hr *http.Request, v any) bool {
	hr.Body = http.MaxBytesReader(rw, hr.Body, s.opts.MaxBodyBytes)

	dec := json.NewDecoder(hr.Body)
	dec.DisallowUnknownFields()

	decodeErr := dec.Decode(v)
	if decodeErr == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(decodeErr, &tooLarge) {
		s.fail(rw, hr, http.StatusRequestEntityTooLarge, decodeErr)

		return false
	}

	s.fail(rw, hr, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", decodeErr))

	return false
}

// load reads the request's table and the status to answer with on failure.
func (s *Server) load(src DataSource) (*frame.Table, int, error) {
	switch {
	case src.Data != "" && src.CSV != "":
		return nil, http.StatusBadRequest, ErrAmbiguousData
	case src.CSV != "":
		table, err := frame.ReadCSV(strings.NewReader(src.CSV))
		if err != nil {
			return nil, http.StatusUnprocessableEntity, err
		}

		return table, http.StatusOK, nil
	case src.Data == "":
		return nil, http.StatusBadRequest, ErrNoData
	}

	path, err := batch.ResolvePath(s.opts.DataDir, src.Data)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	table, err := frame.Load(path, frame.LoadOptions{Sheet: src.Sheet})
	if errors.Is(err, os.ErrNotExist) {
		return nil, http.StatusNotFound, err
	}

	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}

	return table, http.StatusOK, nil
}

func (s *Server) fail(rw http.ResponseWriter, hr *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	s.logger.Log(hr.Context(), level, "request failed",
		slog.String("path", hr.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err))

	writeJSON(rw, hr, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(rw http.ResponseWriter, hr *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(hr.Context(), "failed to encode JSON response", "error", encodeErr)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
