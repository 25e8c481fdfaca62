package domain

// ActiveState is the tri-state account-active flag carried on an
// Authorization. Unknown means the account row has not been consulted yet for
// this session; it is distinct from a checked-and-disabled account.
type ActiveState int

const (
	ActiveUnknown ActiveState = iota
	ActiveYes
	ActiveNo
)

// Authorization is the per-login session record kept in Redis under an opaque
// session token. IsAuthorize flips when the OTP challenge is passed; Active
// and Roles are attached once the account row has been consulted. The record
// disappears on TTL expiry or explicit revocation; an expired record reads as
// not found.
type Authorization struct {
	UserID             string
	AuthorizationToken string
	IsAuthorize        bool
	// Expiration is the TTL in seconds snapshotted at creation, echoed into
	// the stored value for readability. The authoritative lifetime is the
	// Redis key TTL.
	Expiration int64
	Active     ActiveState
	Roles      []string
}

// Authorized reports whether the session may perform protected actions.
func (a *Authorization) Authorized() bool {
	return a.IsAuthorize && a.Active == ActiveYes
}
