package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/lumapos/lumapos/internal/catalog"
	"github.com/lumapos/lumapos/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sales", h.Record)
	r.Get("/sales/{id}", h.Get)
	r.Get("/sales", h.ListByDateRange)
}

type recordItemForm struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// Items carries no min constraint: an empty cart is a domain rule
// (ErrEmptyCart, 422), not a malformed request.
type recordForm struct {
	Items          []recordItemForm `json:"items" validate:"dive"`
	Method         string           `json:"method" validate:"required,oneof=cash card"`
	AmountTendered string           `json:"amount_tendered" validate:"required"`
	Cashier        string           `json:"cashier"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var form recordForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tendered, err := decimal.NewFromString(form.AmountTendered)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid amount tendered")
		return
	}

	items := make([]ItemInput, 0, len(form.Items))
	for _, item := range form.Items {
		items = append(items, ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	receipt, err := h.service.Record(r.Context(), RecordInput{
		Items:          items,
		Method:         PaymentMethod(form.Method),
		AmountTendered: tendered,
		Cashier:        form.Cashier,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sales, err := h.service.ListByDateRange(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	const day = 24 * time.Hour
	now := time.Now()
	from := now.Truncate(day)
	to := from.Add(day - time.Nanosecond)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date")
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date")
		}
		to = parsed.Add(day - time.Nanosecond)
	}
	return from, to, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInsufficientPayment),
		errors.Is(err, ErrCardAmountMismatch),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPaymentMethod):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Sale Rejected", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("sales handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "")
	}
}
