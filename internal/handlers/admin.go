// internal/handlers/admin.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/thulla/internal/auth"
)

const (
	adminSubject = "admin"
	authCookie   = "auth_token"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// AdminLoginHandler exchanges the admin password for a signed token, returned
// in the body and as the auth_token cookie. It answers 404 when no admin
// password hash is configured.
func AdminLoginHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if gs.cfg.AdminPasswordHash == "" {
			http.Error(w, "admin disabled", http.StatusNotFound)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request payload", http.StatusBadRequest)
			return
		}

		ok, err := auth.VerifyPassword(req.Password, gs.cfg.AdminPasswordHash)
		if err != nil {
			gs.logger.Errorf("admin password hash unusable: %v", err)
			http.Error(w, "admin misconfigured", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		token, err := gs.Tokens.Issue(adminSubject)
		if err != nil {
			http.Error(w, "failed to issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authCookie,
			Value:    token,
			HttpOnly: true,
			Path:     "/admin",
		})
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}

// requireAdmin rejects requests without a valid admin token.
func (gs *GameServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		sub, err := gs.Tokens.Verify(token)
		if err != nil || sub != adminSubject {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminStateHandler returns the public board snapshot. Hand contents are
// never included.
func AdminStateHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, gs.Store.Snapshot())
	}
}

// AdminResetHandler force-resets the round; every session sees abort_game.
func AdminResetHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		gs.Store.Reset()
		gs.logger.Warn("round reset by admin")
		w.WriteHeader(http.StatusNoContent)
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Phase    string `json:"phase"`
	Players  int    `json:"players"`
	Sessions int    `json:"sessions"`
}

// HealthHandler reports liveness together with a one-line view of the game.
func HealthHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := gs.Store.Snapshot()
		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "ok",
			Phase:    snap.Phase.String(),
			Players:  len(snap.Seats),
			Sessions: gs.Broadcaster.Len(),
		})
	}
}
