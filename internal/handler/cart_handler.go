package handler

import (
	"net/http"

	"fsanano/inventory-cart/internal/service"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.List(r.Context(), identity(r).User.ID)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req service.AddToCartInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := identity(r).User.ID
	entry, err := h.cart.AddOrIncrement(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err, "Failed to add item to cart")
		return
	}

	h.log.Debug(r.Context(), "cart entry saved",
		"user_id", userID,
		"item_id", entry.ItemID,
		"quantity", entry.Quantity,
	)
	writeMessage(w, http.StatusOK, "Item added to cart successfully")
}

func (h *Handler) UpdateCartEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, service.ErrNotFound, "")
		return
	}
	var req service.UpdateCartInput
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.cart.SetQuantity(r.Context(), identity(r).User.ID, id, req); err != nil {
		h.writeError(w, r, err, "Failed to update cart")
		return
	}
	writeMessage(w, http.StatusOK, "Cart updated successfully")
}

func (h *Handler) RemoveCartEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, r, service.ErrNotFound, "")
		return
	}

	if err := h.cart.Remove(r.Context(), identity(r).User.ID, id); err != nil {
		h.writeError(w, r, err, "Failed to remove item from cart")
		return
	}
	writeMessage(w, http.StatusOK, "Item removed from cart successfully")
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), identity(r).User.ID); err != nil {
		h.writeError(w, r, err, "Failed to clear cart")
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared successfully")
}
