package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/transport"
	"github.com/go-chi/chi"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreatePaymentDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	view, err := h.Service.Create(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, view)
}

// ListPayments handles GET /api/v1/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	filter, appErr := parseListFilter(r)
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := filter.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	views, err := h.Service.List(r.Context(), user.ID, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payments": views,
		"count":    len(views),
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	h.withPayment(w, r, func(ownerID, id int64) {
		view, err := h.Service.Get(r.Context(), ownerID, id)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, view)
	})
}

// UpdatePayment handles PATCH /api/v1/payments/{id}
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	h.withPayment(w, r, func(ownerID, id int64) {
		var dto UpdatePaymentDTO
		if appErr := h.DecodeJSON(r, &dto); appErr != nil {
			h.HandleError(w, appErr)
			return
		}

		view, err := h.Service.Update(r.Context(), ownerID, id, dto)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, view)
	})
}

// DeletePayment handles DELETE /api/v1/payments/{id}
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	h.withPayment(w, r, func(ownerID, id int64) {
		if err := h.Service.Delete(r.Context(), ownerID, id); err != nil {
			h.HandleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// MarkAsPaid handles POST /api/v1/payments/{id}/mark-paid
func (h *Handler) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	h.withPayment(w, r, func(ownerID, id int64) {
		view, err := h.Service.MarkAsPaid(r.Context(), ownerID, id)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, view)
	})
}

// SendReminder handles POST /api/v1/payments/{id}/send-reminder
func (h *Handler) SendReminder(w http.ResponseWriter, r *http.Request) {
	h.withPayment(w, r, func(ownerID, id int64) {
		view, err := h.Service.SendReminder(r.Context(), ownerID, id)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, view)
	})
}

// GetReceipt handles GET /api/v1/payments/{id}/receipt
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	h.withPayment(w, r, func(ownerID, id int64) {
		receipt, err := h.Service.Receipt(r.Context(), ownerID, id)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteBinary(w, "application/pdf", receipt.FileName, receipt.Content)
	})
}

// GetStats handles GET /api/v1/payments/stats and /api/v1/payments/stats/{propertyId}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var propertyID *int64
	if chi.URLParam(r, "propertyId") != "" {
		id, appErr := h.PathInt64(r, "propertyId")
		if appErr != nil {
			h.HandleError(w, appErr)
			return
		}
		propertyID = &id
	}

	result, err := h.Service.Stats(r.Context(), user.ID, propertyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// ExportPayments handles GET /api/v1/payments/export
func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	export, err := h.Service.Export(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteBinary(w, xlsxContentType, export.FileName, export.Content)
}

func (h *Handler) withPayment(w http.ResponseWriter, r *http.Request, fn func(ownerID, id int64)) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	fn(user.ID, id)
}

func parseListFilter(r *http.Request) (ListFilter, *errors.AppError) {
	q := r.URL.Query()
	filter := ListFilter{Status: q.Get("status")}

	ints := []struct {
		name string
		dst  *int64
	}{
		{"property_id", &filter.PropertyID},
		{"tenant_id", &filter.TenantID},
	}
	for _, p := range ints {
		if raw := q.Get(p.name); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || v <= 0 {
				return filter, errors.NewValidationFieldError(p.name, p.name+" must be a positive integer", errors.ErrCodeValidationFailed)
			}
			*p.dst = v
		}
	}

	pages := []struct {
		name string
		dst  *int
	}{
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	}
	for _, p := range pages {
		if raw := q.Get(p.name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return filter, errors.NewValidationFieldError(p.name, p.name+" must be an integer", errors.ErrCodeValidationFailed)
			}
			*p.dst = v
		}
	}

	return filter, nil
}
