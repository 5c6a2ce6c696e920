package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/emporia-shop/emporia-backend/internal/middleware"
	"github.com/emporia-shop/emporia-backend/internal/services"
	"github.com/emporia-shop/emporia-backend/pkg/clientip"
)

// Auth Response
type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    interface{} `json:"user,omitempty"`
}

type AuthHandler struct {
	auth     *services.AuthService
	sessions *services.SessionManager
}

func NewAuthHandler(auth *services.AuthService, sessions *services.SessionManager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate required fields
	if req.UserName == "" || req.Password == "" || req.Email == "" {
		http.Error(w, "User name, password, and email are required", http.StatusBadRequest)
		return
	}

	if err := h.auth.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			http.Error(w, "Passwords do not match", http.StatusBadRequest)
		case errors.Is(err, services.ErrUsernameTaken):
			http.Error(w, "User name already taken", http.StatusConflict)
		default:
			log.Printf("register failed for %q: %v", req.UserName, err)
			http.Error(w, "Unable to create user, please try again", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "User created",
	})
}

// Login handles user login and issues the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds services.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if creds.UserName == "" || creds.Password == "" {
		http.Error(w, "User name and password are required", http.StatusBadRequest)
		return
	}

	creds.UserAgent = r.UserAgent()
	creds.ClientIP = clientip.RealClientIP(r)

	identity, err := h.auth.Authenticate(r.Context(), creds)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		log.Printf("login failed for %q: %v", creds.UserName, err)
		http.Error(w, "Unable to log in, please try again", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Issue(w, identity); err != nil {
		log.Printf("session issue failed for %q: %v", identity.UserName, err)
		http.Error(w, "Unable to log in, please try again", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    identity,
	})
}

// Logout terminates the session immediately
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Logged out",
	})
}

// Me returns the identity bound to the current session
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "Not logged in", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "OK",
		User:    identity,
	})
}

// History returns the login history from the session snapshot. It reads the
// session, not the store: the history is as of the last login.
func (h *AuthHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		http.Error(w, "Not logged in", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"userName":     identity.UserName,
		"loginHistory": identity.LoginHistory,
	})
}
