package domain

import "github.com/openprofile/openprofile"

// Trust registry statuses. Only TrustStatusOK grants federation
// trust; anything else is fail-closed.
const (
	TrustStatusOK      = "ok"
	TrustStatusPending = "pending"
	TrustStatusFailure = "failure"
)

// TrustedServer is one entry of the federation trust registry.
type TrustedServer struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
	Status string `json:"status"`
	// SharedSecret signs the peer's announcement tokens. It is set
	// when the operator approves the peer, never over the wire.
	SharedSecret string `json:"-"`
	// WellKnown keeps the peer's descriptor for reuse.
	WellKnown openprofile.WellKnownProfile `json:"wellKnown"`
}

// Trusted reports whether this entry grants federation trust.
func (s TrustedServer) Trusted() bool {
	return s.Status == TrustStatusOK
}
