package visibility

import "strings"

// Allowed reports whether a field with the given scope may be
// disclosed to the viewer.
//
//  1. Private   - visible to users on same server instance
//  2. Local     - visible to users and public link visitors on same server instance
//  3. Federated - visible to users and public link visitors on same server instance and trusted servers
//  4. Published - same as Federated but also published to public lookup server
//
// An unrecognized scope never discloses.
func Allowed(scope Scope, ctx ViewerContext) bool {
	switch scope {
	case ScopePrivate:
		return ctx.IsAuthenticated && ctx.IsSameInstance
	case ScopeLocal:
		return ctx.IsSameInstance
	case ScopeFederated:
		return ctx.IsTrustedFederation
	case ScopePublished:
		// The public lookup directory is not consulted yet, so
		// Published behaves exactly like Federated.
		return ctx.IsTrustedFederation
	default:
		return false
	}
}

// Resolve evaluates every field independently against the viewer and
// returns the projection in input order. Fields must carry unique
// identifiers; if a duplicate slips through, the first occurrence
// wins and later ones are ignored, keeping the result deterministic.
func Resolve(fields []ProfileField, ctx ViewerContext) Projection {
	proj := NewProjection()
	for _, field := range fields {
		if _, seen := proj.Get(field.ID); seen {
			continue
		}
		if Allowed(field.Scope, ctx) {
			proj.Disclose(field.ID, field.Value)
		} else {
			proj.Withhold(field.ID)
		}
	}
	return proj
}

// AvatarVisible applies the scope table to the avatar flag. The
// avatar has no value payload; the image travels through a different
// channel.
func AvatarVisible(scope Scope, ctx ViewerContext) bool {
	return Allowed(scope, ctx)
}

// ProfileEnabled parses the stored profile-enabled flag. Anything
// that does not strictly read as a boolean, including an absent
// property, resolves to disabled.
func ProfileEnabled(raw *string) bool {
	if raw == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
