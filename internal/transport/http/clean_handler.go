package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/files"
	"routecleaner/internal/middleware"
	"routecleaner/internal/services"
)

// Response headers carrying the run summary next to the cleaned sheet
const (
	HeaderRunID             = "X-Routecleaner-Run-ID"
	HeaderInputRows         = "X-Routecleaner-Input-Rows"
	HeaderOutputRows        = "X-Routecleaner-Output-Rows"
	HeaderDuplicatesRemoved = "X-Routecleaner-Duplicates-Removed"
	HeaderUncategorized     = "X-Routecleaner-Uncategorized"
	HeaderGroups            = "X-Routecleaner-Groups"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

// cleanParams are the request parameters of a clean upload
type cleanParams struct {
	FileName string `form:"file" validate:"required,filename"`
	Rows     *int   `form:"rows" validate:"omitempty,gte=0,lte=1000"`
	Format   string `form:"format" validate:"omitempty,oneof=xlsx csv"`
	Sheet    string `form:"sheet" validate:"omitempty,max=31"`
}

// CleanHandler handles delivery export uploads
type CleanHandler struct {
	service        CleaningService
	validator      *middleware.RequestValidator
	errorHandler   *apperrors.ErrorHandler
	logger         *slog.Logger
	maxUploadBytes int64
	now            func() time.Time
}

// NewCleanHandler creates a new clean handler. maxUploadBytes <= 0 disables
// the upload limit.
func NewCleanHandler(service CleaningService, errorHandler *apperrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *CleanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apperrors.NewErrorHandler(logger, false)
	}
	return &CleanHandler{
		service:        service,
		validator:      middleware.NewRequestValidator(logger),
		errorHandler:   errorHandler,
		logger:         logger.With(slog.String("handler", "clean")),
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// Routes returns the clean routes
func (h *CleanHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/settings", h.Settings)
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
		r.Post("/", h.Clean)
		r.Post("/summary", h.Summary)
	})

	return r
}

// Clean handles POST /api/v1/clean. The cleaned sheet is the response body;
// the run summary travels in X-Routecleaner-* headers.
func (h *CleanHandler) Clean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	upload, err := h.parseUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer upload.file.Close()

	var buf bytes.Buffer
	result, err := h.service.RunPipeline(ctx, upload.input(),
		services.Output{Writer: &buf, Format: upload.format}, upload.runOptions()...)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	outputCfg := h.service.Config().Output
	outputCfg.Format = string(result.Format)
	name := files.OutputName(outputCfg, h.now())

	header := w.Header()
	header.Set("Content-Type", result.Format.ContentType())
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	header.Set("Content-Length", strconv.Itoa(buf.Len()))
	setSummaryHeaders(header, result)

	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "Failed to stream route sheet",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Route sheet served",
		slog.String("upload", upload.params.FileName),
		slog.String("file_name", name),
		slog.Int("output_rows", result.Summary.OutputRows))
}

// Summary handles POST /api/v1/clean/summary. It runs the same cleaning as
// Clean but answers with the run summary and per-route counts as JSON.
func (h *CleanHandler) Summary(w http.ResponseWriter, r *http.Request) {
	upload, err := h.parseUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer upload.file.Close()

	result, err := h.service.RunPipeline(r.Context(), upload.input(),
		services.Output{Writer: io.Discard, Format: upload.format}, upload.runOptions()...)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	setSummaryHeaders(w.Header(), result)
	render.JSON(w, r, result)
}

// Settings handles GET /api/v1/clean/settings
func (h *CleanHandler) Settings(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()
	render.JSON(w, r, map[string]interface{}{
		"pipeline": cfg.Pipeline,
		"output":   cfg.Output,
	})
}

type upload struct {
	params cleanParams
	file   multipart.File
	format files.Format
}

func (u *upload) input() services.Input {
	return services.Input{
		Reader: u.file,
		Name:   u.params.FileName,
		Sheet:  u.params.Sheet,
	}
}

func (u *upload) runOptions() []services.RunOption {
	if u.params.Rows == nil {
		return nil
	}
	return []services.RunOption{services.WithSeparatorSize(*u.params.Rows)}
}

// parseUpload reads the multipart form, validates its parameters and opens
// the uploaded file. The caller closes the file.
func (h *CleanHandler) parseUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, apperrors.ErrInvalidRequest
	}

	params := cleanParams{
		Format: r.FormValue("format"),
		Sheet:  r.FormValue("sheet"),
	}
	if raw := r.FormValue("rows"); raw != "" {
		rows, err := cast.ToIntE(raw)
		if err != nil {
			return nil, apperrors.ErrValidation("rows", "rows must be a whole number")
		}
		params.Rows = &rows
	}

	file, fh, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return nil, apperrors.ErrInvalidRequest
	}
	if fh != nil {
		params.FileName = fh.Filename
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	u := &upload{params: params, file: file}
	if params.Format != "" {
		format, err := files.ParseFormat(params.Format)
		if err != nil {
			file.Close()
			return nil, err
		}
		u.format = format
	}
	return u, nil
}

func setSummaryHeaders(header http.Header, result *services.Result) {
	s := result.Summary
	if s == nil {
		return
	}
	header.Set(HeaderRunID, s.RunID)
	header.Set(HeaderInputRows, strconv.Itoa(s.InputRows))
	header.Set(HeaderOutputRows, strconv.Itoa(s.OutputRows))
	header.Set(HeaderDuplicatesRemoved, strconv.Itoa(s.DuplicatesRemoved))
	header.Set(HeaderUncategorized, strconv.Itoa(s.Uncategorized))
	header.Set(HeaderGroups, strconv.Itoa(s.Groups))
}
