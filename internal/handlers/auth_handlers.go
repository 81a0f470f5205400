package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xdrive/xdrive-logistics/internal/domain"
)

// Register handles user registration
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	user, verifyURL, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"message": "Registration successful. Please check your email to verify your account.",
		"user":    user.ToUserInfo(),
	}

	// Surface the verify URL in development so the flow can be exercised
	// without a mail transport.
	if h.config.Email.DevMode {
		response["dev_verify_url"] = verifyURL
	}

	writeJSON(w, http.StatusCreated, response)
}

// Login handles user authentication
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	response, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// VerifyEmail handles email verification
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing verification token", "INVALID_INPUT")
		return
	}

	user, err := h.authService.VerifyEmail(r.Context(), token)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully",
		"email":   user.Email,
	})
}

// ResendVerification handles resending verification emails
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", "INVALID_INPUT")
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification email sent",
	})
}

// Me returns the authenticated user
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing session", "UNAUTHORIZED")
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.Sub)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user.ToUserInfo()})
}
