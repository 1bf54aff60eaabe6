package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/socialmock/apiserver/internal/services"
	"github.com/socialmock/apiserver/types"
)

// AuthHandler provides the shared-secret authentication endpoints.
type AuthHandler struct {
	userService *services.UserService
	secret      string
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, secret string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		secret:      secret,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, secret string) {
	handler := NewAuthHandler(userService, secret)

	r.Post("/verify", handler.Verify)
	r.Post("/login", handler.Login)
	r.Post("/register", handler.Register)
}

// Verify checks a client-held secret against the server's.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Secret == "" || req.Secret != h.secret {
		writeError(w, http.StatusForbidden, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Verified."})
}

// Login verifies credentials and returns the user with the secret.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Secret: h.secret, User: user})
}

// Register creates a new user account and returns it with the secret.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Secret: h.secret, User: user})
}

type VerifyRequest struct {
	Secret string `json:"secret"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse flattens the user next to the secret.
type AuthResponse struct {
	Secret string `json:"secret"`
	types.User
}
