package visibility

// Scope is a privacy tier attached to a single profile field, ordered
// by increasing disclosure breadth.
type Scope int

const (
	ScopeInvalid Scope = iota
	ScopePrivate
	ScopeLocal
	ScopeFederated
	ScopePublished
)

// Stored representations of each scope. The v2 prefix is the account
// store's on-disk form; the bare forms are accepted for compatibility.
const (
	ScopeStringPrivate   = "v2-private"
	ScopeStringLocal     = "v2-local"
	ScopeStringFederated = "v2-federated"
	ScopeStringPublished = "v2-published"
)

func ParseScope(s string) Scope {
	switch s {
	case ScopeStringPrivate, "private":
		return ScopePrivate
	case ScopeStringLocal, "local":
		return ScopeLocal
	case ScopeStringFederated, "federated":
		return ScopeFederated
	case ScopeStringPublished, "published":
		return ScopePublished
	default:
		return ScopeInvalid
	}
}

func (s Scope) String() string {
	switch s {
	case ScopePrivate:
		return ScopeStringPrivate
	case ScopeLocal:
		return ScopeStringLocal
	case ScopeFederated:
		return ScopeStringFederated
	case ScopePublished:
		return ScopeStringPublished
	default:
		return "invalid"
	}
}

// Stable field identifiers, doubling as JSON keys on the wire.
// Catalog order is presentation order.
const (
	FieldDisplayName = "displayName"
	FieldAddress     = "address"
	FieldCompany     = "company"
	FieldJobTitle    = "jobTitle"
	FieldHeadline    = "headline"
	FieldBiography   = "biography"

	FieldEmail   = "email"
	FieldPhone   = "phoneNumber"
	FieldWebsite = "website"
	FieldTwitter = "twitterUsername"

	FieldAvatar = "avatar"

	// FieldProfileEnabled gates the whole page, not a single field.
	FieldProfileEnabled = "profileEnabled"
)

// DisplayFields is the ordered catalog of value-bearing profile fields.
var DisplayFields = []string{
	FieldDisplayName,
	FieldAddress,
	FieldCompany,
	FieldJobTitle,
	FieldHeadline,
	FieldBiography,
}

// ActionFields is the ordered catalog of fields that may carry a
// contact action.
var ActionFields = []string{
	FieldEmail,
	FieldPhone,
	FieldWebsite,
	FieldTwitter,
}

// ProfileField is one disclosable attribute of a profile owner.
// Value nil means the owner never set the field, which is distinct
// from the field being withheld for privacy.
type ProfileField struct {
	ID    string
	Scope Scope
	Value *string
}

// ViewerContext carries the already-resolved facts about the
// requester. All three fields are required inputs; the zero value is
// the anonymous cross-instance viewer and discloses nothing but
// Published/Federated fields of trusted peers (which it also lacks).
type ViewerContext struct {
	IsAuthenticated     bool
	IsSameInstance      bool
	IsTrustedFederation bool
}
