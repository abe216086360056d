package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/najugourmet/storefront/internal/domain/order"
	"github.com/najugourmet/storefront/internal/handoff"
	"github.com/najugourmet/storefront/internal/tracker"
)

type submitOrderRequest struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	DeliveryType  string          `json:"delivery_type"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
}

type submitOrderResponse struct {
	OrderID         string          `json:"order_id,omitempty"`
	ShortID         string          `json:"short_id,omitempty"`
	Submitted       bool            `json:"submitted"`
	FinalTotal      decimal.Decimal `json:"final_total"`
	CashStatus      string          `json:"cash_status"`
	Change          decimal.Decimal `json:"change"`
	WhatsAppLink    string          `json:"whatsapp_link"`
	WhatsAppMessage string          `json:"whatsapp_message"`
}

// requireOpenStore rejects the request with 503 when the store is closed.
// Ordering flows check it before touching any cart or order logic.
func (h *Handler) requireOpenStore(w http.ResponseWriter, r *http.Request) bool {
	settings, err := h.catalog.Settings(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("load settings", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load store settings")
		return false
	}
	if !settings.IsOpen {
		msg := settings.ClosedMessage
		if msg == "" {
			msg = "the store is closed right now"
		}
		writeError(w, r, http.StatusServiceUnavailable, msg)
		return false
	}
	return true
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireOpenStore(w, r) {
		return
	}

	var req submitOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	deliveryType := order.DeliveryType(req.DeliveryType)
	if deliveryType != order.DeliveryPickup && deliveryType != order.DeliveryDelivery {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid delivery type")
		return
	}
	paymentMethod := order.PaymentMethod(req.PaymentMethod)
	if paymentMethod != order.PaymentPix && paymentMethod != order.PaymentCard && paymentMethod != order.PaymentCash {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid payment method")
		return
	}

	res, err := h.orders.Submit(r.Context(), sessionID(r.Context()), order.Checkout{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DeliveryType:  deliveryType,
		Address:       req.Address,
		PaymentMethod: paymentMethod,
		CashTendered:  req.CashAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, order.ErrSubmissionInFlight):
			writeError(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, order.ErrMissingName),
			errors.Is(err, order.ErrInvalidPhone),
			errors.Is(err, order.ErrMissingAddress),
			errors.Is(err, order.ErrInsufficientCash):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		default:
			zctx.From(r.Context()).Error("submit order", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "failed to submit order")
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, submitOrderResponse{
		OrderID:         res.OrderID,
		ShortID:         handoff.ShortID(res.OrderID),
		Submitted:       res.Submitted,
		FinalTotal:      res.FinalTotal,
		CashStatus:      string(res.CashStatus),
		Change:          res.Change,
		WhatsAppLink:    h.whatsapp.Link(res.Handoff),
		WhatsAppMessage: h.whatsapp.Message(res.Handoff),
	})
}

type orderStatusDTO struct {
	ID        string          `json:"id"`
	ShortID   string          `json:"short_id"`
	Status    string          `json:"status"`
	Steps     []string        `json:"steps"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

func snapshotToDTO(snap *tracker.Snapshot) orderStatusDTO {
	steps := make([]string, 0, len(snap.Steps))
	for _, s := range snap.Steps {
		steps = append(steps, string(s))
	}
	return orderStatusDTO{
		ID:        snap.Order.ID,
		ShortID:   handoff.ShortID(snap.Order.ID),
		Status:    string(snap.Order.Status),
		Steps:     steps,
		Total:     snap.Order.Total,
		CreatedAt: snap.Order.CreatedAt,
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	snap, err := h.tracker.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("get order", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to load order")
		return
	}

	writeJSON(w, r, http.StatusOK, snapshotToDTO(snap))
}

// streamOrderEvents serves the order's live status feed over server-sent
// events. The current snapshot is sent first, then one event per status
// change until the client disconnects.
func (h *Handler) streamOrderEvents(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	snap, sub, err := h.tracker.Subscribe(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("subscribe order", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sendEvent(w, r, "status", snapshotToDTO(snap))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, open := <-sub.Updates():
			if !open {
				return
			}
			sendEvent(w, r, "status", u)
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, r *http.Request, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zctx.From(r.Context()).Error("encode event", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
