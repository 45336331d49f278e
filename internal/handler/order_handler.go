package handler

import (
	"net/http"

	"github.com/lasmate/Alisee/internal/service"
)

// CreateOrder checks out the submitted cart. Any client-side total or line price is ignored.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.shop.Orders.CreateOrder(r.Context(), userFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"orderId":    o.ID,
		"reference":  o.Reference,
		"totalPrice": o.TotalPrice,
	})
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.shop.Orders.ListForUser(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
