package notifyserver

import (
	"encoding/json"
	"log"
	"net/http"

	"social-go/internal/auth"
	"social-go/internal/config"
	ws "social-go/internal/websocket"
)

// WebSocketHandler authenticates upgrade requests and hands connections to
// the hub.
type WebSocketHandler struct {
	Hub            *ws.Hub
	JWTSecretKey   string
	TokenBlacklist auth.TokenBlacklist
	WSConfig       config.WebSocketConfig
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *ws.Hub, jwtSecretKey string, blacklist auth.TokenBlacklist, wsCfg config.WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		Hub:            hub,
		JWTSecretKey:   jwtSecretKey,
		TokenBlacklist: blacklist,
		WSConfig:       wsCfg,
	}
}

// HandleConnection upgrades /ws requests for authenticated users. Browsers
// cannot set headers on websocket handshakes, so the token rides in the
// "token" query parameter.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		unauthorized(w, "missing token query parameter")
		return
	}

	claims, err := auth.ValidateToken(r.Context(), tokenString, h.JWTSecretKey, h.TokenBlacklist)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		unauthorized(w, "invalid token")
		return
	}

	ws.ServeWsPerConnection(h.Hub, claims.UserID, w, r, h.WSConfig)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
