package handler

import (
	"net/http"

	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/service"
)

type itemResponse struct {
	Message string      `json:"message"`
	Item    *model.Item `json:"item"`
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ve := &service.ValidationError{}
	in := service.ListItemsInput{
		Search:        q.Get("search"),
		SortBy:        q.Get("sort_by"),
		SortDirection: q.Get("sort_direction"),
		Page:          queryInt(r, "page", ve),
		PerPage:       queryInt(r, "per_page", ve),
	}
	if len(ve.Fields) > 0 {
		writeValidation(w, ve)
		return
	}

	page, err := h.items.List(r.Context(), identity(r).User.ID, in)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req service.ItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.items.Create(r.Context(), identity(r).User.ID, req)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, itemResponse{Message: "Item created successfully", Item: item})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, service.ErrNotFound, "")
		return
	}

	item, err := h.items.Get(r.Context(), identity(r).User.ID, id)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, service.ErrNotFound, "")
		return
	}
	var req service.ItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.items.Update(r.Context(), identity(r).User.ID, id, req)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Message: "Item updated successfully", Item: item})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, service.ErrNotFound, "")
		return
	}

	if err := h.items.Delete(r.Context(), identity(r).User.ID, id); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeMessage(w, http.StatusOK, "Item deleted successfully")
}
