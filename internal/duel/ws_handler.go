package duel

import (
	"net/http"

	"github.com/iamnoseh/IQRA-sub000/internal/auth"
	"github.com/iamnoseh/IQRA-sub000/internal/server"
	httperrors "github.com/iamnoseh/IQRA-sub000/pkg/http/errors"
)

// WSHandler upgrades HTTP requests to authenticated duel WebSocket sessions.
type WSHandler struct {
	handler  *Handler
	verifier *auth.Verifier
}

// NewWSHandler creates the HTTP entry point for duel WebSockets.
func NewWSHandler(handler *Handler, verifier *auth.Verifier) *WSHandler {
	return &WSHandler{handler: handler, verifier: verifier}
}

// ServeHTTP authenticates the token query parameter and upgrades the
// connection.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	claims, err := h.verifier.Verify(token)
	if err != nil {
		h.handler.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.handler.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.handler.HandleConnection(conn, claims.UserID, claims.DisplayName, claims.Avatar)
}
