package handler

import (
	"errors"
	"net/http"
	"time"

	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/service"
)

type authResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

type checkAuthResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	h.log.Info(r.Context(), "user registered", "user_id", res.User.ID)
	h.setAuthCookie(w, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "Registration successful",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeValidation(w, service.NewValidationError("email", "The provided credentials are incorrect."))
			return
		}
		h.writeError(w, r, err, "")
		return
	}

	if req.RememberMe {
		h.setAuthCookie(w, res.Token, res.ExpiresAt)
	}
	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), identity(r).TokenID); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	h.clearAuthCookie(w)
	writeMessage(w, http.StatusOK, "Successfully logged out")
}

func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identity(r).User)
}

// CheckAuth reports whether the request carries a valid token. It never
// answers with the generic 401 body.
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.Authenticate(r.Context(), requestToken(r))
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			h.writeError(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusUnauthorized, checkAuthResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, checkAuthResponse{Authenticated: true, User: id.User})
}
