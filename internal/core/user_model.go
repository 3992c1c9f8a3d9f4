package core

// Role values issued by the backend.
const (
	RoleAdmin           = "admin"
	RoleFinancialLeader = "financial_leader"
	RoleRegionalUser    = "user"
)

// Actor is the user performing an action. Role decides warehouse visibility.
type Actor struct {
	ID       int    `json:"id"`
	Role     string `json:"role"`
	RegionID int    `json:"regionId"`
}

// SeesAllRegions reports whether the actor's scope spans every region.
func (a Actor) SeesAllRegions() bool {
	return a.Role == RoleAdmin || a.Role == RoleFinancialLeader
}

// Session is the request context threaded into every backend call.
// With a Token the client sends a bearer header; without one it falls back
// to the X-User-ID / X-Region-ID placeholder pair. The fallback is not a
// security boundary.
type Session struct {
	Token            string
	FallbackUserID   string
	FallbackRegionID string
}

// Authenticated reports whether the session carries a bearer token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// WithToken returns a copy of s bound to token, keeping the fallback pair.
func (s Session) WithToken(token string) Session {
	s.Token = token
	return s
}
