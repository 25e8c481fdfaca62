package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/pkg/validate"
	"github.com/go-auth-api/internal/transport/http/middleware"
)

// SessionHandler handles the login-session endpoints.
type SessionHandler struct {
	svc auth.Service
}

func NewSessionHandler(svc auth.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Login opens a pending session and sends an OTP challenge. The returned
// tokens are not usable on protected routes until the challenge is passed.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		SessionToken:       result.SessionToken,
		AuthorizationToken: result.AuthorizationToken,
		Message:            "verification code sent",
	})
}

// Google exchanges a Google ID token for a session. Verified Google emails
// come back already authorized; others still get an OTP challenge.
func (h *SessionHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "id_token required")
		return
	}
	result, err := h.svc.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		SessionToken:       result.SessionToken,
		AuthorizationToken: result.AuthorizationToken,
	})
}

// Resume re-opens an OTP challenge from a conflict payload_ref.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PayloadRef string `json:"payload_ref"`
		Channel    string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PayloadRef == "" {
		writeError(w, http.StatusBadRequest, "payload_ref required")
		return
	}
	result, err := h.svc.ResumeFromRef(r.Context(), req.PayloadRef, req.Channel)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		SessionToken:       result.SessionToken,
		AuthorizationToken: result.AuthorizationToken,
		Message:            "verification code sent",
	})
}

// Activate marks the session's account active. It validates the session
// token and bearer itself: the account is not active yet, so the session
// gate would reject it.
func (h *SessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	sessionToken := r.Header.Get("X-Session-Token")
	if sessionToken == "" {
		writeError(w, http.StatusUnauthorized, "missing session token")
		return
	}
	var bearer string
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		bearer = strings.TrimPrefix(authHeader, "Bearer ")
	}
	rec, err := h.svc.ActivateAccount(r.Context(), sessionToken, bearer)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{
		UserID:     rec.UserID,
		Authorized: rec.Authorized(),
		Roles:      rec.Roles,
	})
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{
		UserID:     sess.Record.UserID,
		Authorized: sess.Record.Authorized(),
		Roles:      sess.Record.Roles,
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Logout(r.Context(), sess.Token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
