package importer

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumapos/lumapos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import/preview", h.Preview)
	r.Post("/import/{token}/commit", h.Commit)
}

const maxUploadBytes = 32 << 20

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	source, err := uploadBody(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing csv upload")
		return
	}
	defer source.Close()

	report, err := h.service.Preview(r.Context(), source)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var form struct {
		UpdateExisting bool `json:"update_existing"`
	}
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
			return
		}
	}

	report, err := h.service.Commit(r.Context(), chi.URLParam(r, "token"), CommitOptions{
		UpdateExisting: form.UpdateExisting,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// uploadBody accepts either a multipart "file" part or a raw CSV body.
func uploadBody(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		file, _, err := r.FormFile("file")
		if err == nil {
			return file, nil
		}
	}
	if r.Body == nil {
		return nil, errors.New("empty request body")
	}
	return r.Body, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnrecognizedFormat), errors.Is(err, ErrEmptyFile):
		httpx.Problem(w, http.StatusBadRequest, "Unrecognized Format", err.Error())
	case errors.Is(err, ErrPreviewNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("import handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "")
	}
}
