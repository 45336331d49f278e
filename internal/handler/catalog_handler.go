package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListProducts serves the storefront listing: available items, optionally by category.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.shop.Catalog.ListItems(r.Context(), true, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CountProducts(w http.ResponseWriter, r *http.Request) {
	n, err := h.shop.Catalog.CountItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) IsAvailable(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := h.shop.Catalog.IsAvailable(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isAvailable": ok})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	it, err := h.shop.Catalog.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) CountImages(w http.ResponseWriter, r *http.Request) {
	n, err := h.shop.Catalog.CountImages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	img, err := h.shop.Catalog.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}
