package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mams-ops/apiserver/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// ErrorResponse is the uniform error shape. Redirect, when set, tells
// the navigation shell where to send the user; From preserves the
// originally requested location for post-login navigation.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
	From     string `json:"from,omitempty"`
}

func userFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok {
		return types.User{}, errors.New("missing user")
	}
	return user, nil
}

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeRedirect(w http.ResponseWriter, status int, message, redirect, from string) {
	writeJSON(w, status, ErrorResponse{Error: message, Redirect: redirect, From: from})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound is the catch-all for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// Bases lists the known installations, used by record forms and the
// admin base filter.
func Bases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.DefaultBases)
}
