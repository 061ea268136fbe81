package domain

// Session is a resolved authentication session for an API caller. Issuance
// lives elsewhere; this subsystem only reads sessions to recover the caller's
// user id.
type Session struct {
	Token  string `json:"-"`
	UserID string `json:"userId"`
}
