package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moling/userservice/internal/auth"
)

type contextKey string

const (
	contextIdentityKey contextKey = "identity"
	contextTokenKey    contextKey = "token"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func identityFromContext(ctx context.Context) (auth.Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(auth.Identity)
	if !ok || identity.UserID < 1 {
		return auth.Identity{}, errors.New("missing identity")
	}
	return identity, nil
}

func tokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(contextTokenKey).(string)
	if !ok || token == "" {
		return "", errors.New("missing token")
	}
	return token, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
