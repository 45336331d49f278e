package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/lasmate/Alisee/internal/invoice"
	"github.com/lasmate/Alisee/internal/model"
)

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.shop.Orders.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) AdminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := body.Int("id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := body.String("status")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.shop.Orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

// AdminExportOrder answers with the order invoice as a PDF attachment.
func (h *Handler) AdminExportOrder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := body.Int("orderId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.shop.Orders.Export(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := invoice.RenderPDF(&buf, doc); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename(id)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.shop.Catalog.ListItems(r.Context(), false, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) AdminSetAvailability(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := body.Int("id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	available, err := body.Flag("isAvailable")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.shop.Catalog.SetAvailability(r.Context(), id, available); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.shop.Admin.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) AdminSetAccountType(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := body.Int("id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	accountType, err := body.Int("accountType")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.shop.Admin.SetAccountType(r.Context(), id, model.AccountType(accountType)); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := body.Int("id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.shop.Admin.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.shop.Admin.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
