package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

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
	r.Get("/products", h.ListActive)
	r.Get("/products/all", h.ListAll)
	r.Get("/products/{id}", h.Get)
	r.Get("/products/barcode/{code}", h.GetByBarcode)
	r.Post("/products", h.Upsert)
	r.Put("/products/{id}/stock", h.UpdateStock)
	r.Post("/products/{id}/reactivate", h.Reactivate)
	r.Delete("/products/{id}", h.Remove)
	r.Get("/export/products.csv", h.Export)
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list active products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "failed to load products")
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list all products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "failed to load products")
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, "get product by barcode", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// upsertForm carries the mutable product fields. Amounts travel as
// strings so the desktop shell never round-trips floats.
type upsertForm struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CostPrice   string `json:"cost_price"`
	Barcode     string `json:"barcode"`
	Category    string `json:"category"`
	Stock       int    `json:"stock_quantity"`
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var form upsertForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid price")
		return
	}
	cost := decimal.Zero
	if form.CostPrice != "" {
		if cost, err = decimal.NewFromString(form.CostPrice); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cost price")
			return
		}
	}

	product, outcome, err := h.service.Upsert(r.Context(), Product{
		ID:            form.ID,
		Name:          form.Name,
		Description:   form.Description,
		Price:         price,
		CostPrice:     cost,
		Barcode:       form.Barcode,
		Category:      form.Category,
		StockQuantity: form.Stock,
	})
	if err != nil {
		h.respondError(w, "upsert product", err)
		return
	}
	status := http.StatusOK
	if outcome == Inserted {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, map[string]any{"outcome": outcome, "product": product})
}

func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var form struct {
		Stock int `json:"stock_quantity"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.service.UpdateStock(r.Context(), id, form.Stock); err != nil {
		h.respondError(w, "update stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "stock_quantity": form.Stock})
}

func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	if err := h.service.Reactivate(r.Context(), id); err != nil {
		h.respondError(w, "reactivate product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_active": true})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	outcome, err := h.service.Remove(r.Context(), id)
	if err != nil {
		h.respondError(w, "remove product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "outcome": outcome})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filename := ExportFilename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		h.logger.Error("export catalog", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrInvalidProduct):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "")
	}
}
