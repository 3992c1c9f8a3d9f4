package web

import (
	"context"
	"net/http"
	"strings"

	"order-desk/internal/core"
)

type sessionKey struct{}

// sessionFromContext returns the session stored by WithSession.
func sessionFromContext(ctx context.Context) core.Session {
	v, _ := ctx.Value(sessionKey{}).(core.Session)
	return v
}

// WithSession builds the backend session for each request. A bearer token on
// the request is forwarded as-is; the backend verifies it. Without one the
// configured fallback session is used.
func (h *Handler) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := h.fallback
		if token, ok := bearerToken(r); ok {
			sess = h.fallback.WithToken(token)
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(h[7:])
	return token, token != ""
}

// me handles GET /api/me: the actor the session resolves to.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Whoami(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	type meResponse struct {
		UserID        int    `json:"userId"`
		Role          string `json:"role"`
		RegionID      int    `json:"regionId"`
		Authenticated bool   `json:"authenticated"`
		AllRegions    bool   `json:"allRegions"`
	}
	writeJSON(w, meResponse{
		UserID:        result.Actor.ID,
		Role:          result.Actor.Role,
		RegionID:      result.Actor.RegionID,
		Authenticated: result.Authenticated,
		AllRegions:    result.Actor.SeesAllRegions(),
	})
}
