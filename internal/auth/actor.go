package auth

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"order-desk/internal/core"
)

// Claims is the payload the backend signs into session tokens.
type Claims struct {
	UserID   int    `json:"user_id"`
	Role     string `json:"role"`
	RegionID int    `json:"region_id"`
	jwt.RegisteredClaims
}

// ActorFromSession identifies who is acting. With a token the claims are read
// without signature verification: the backend verifies every request, and the
// actor here only scopes what the client offers. Without a token the fallback
// pair is used and the actor is a regional user. An unreadable token fails
// with core.ErrUnauthorized.
func ActorFromSession(sess core.Session) (core.Actor, error) {
	if sess.Authenticated() {
		claims := &Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err != nil {
			return core.Actor{}, fmt.Errorf("%w: failed to read session token: %v", core.ErrUnauthorized, err)
		}
		if claims.UserID <= 0 {
			return core.Actor{}, fmt.Errorf("%w: session token carries no user_id", core.ErrUnauthorized)
		}
		role := claims.Role
		if role == "" {
			role = core.RoleRegionalUser
		}
		return core.Actor{ID: claims.UserID, Role: role, RegionID: claims.RegionID}, nil
	}

	userID, err := strconv.Atoi(sess.FallbackUserID)
	if err != nil || userID <= 0 {
		return core.Actor{}, fmt.Errorf("invalid fallback user id %q", sess.FallbackUserID)
	}
	regionID, err := strconv.Atoi(sess.FallbackRegionID)
	if err != nil {
		return core.Actor{}, fmt.Errorf("invalid fallback region id %q", sess.FallbackRegionID)
	}
	return core.Actor{ID: userID, Role: core.RoleRegionalUser, RegionID: regionID}, nil
}

// SignToken issues an HS256 token for claims. Used by tooling and tests that
// stand in for the backend's login endpoint.
func SignToken(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}
	return signed, nil
}
