// Package actions decides whether a contact action may be offered for
// a disclosed profile field and renders the offered actions through
// pluggable providers.
package actions

import (
	"sort"

	"github.com/openprofile/openprofile/visibility"
)

// Action is one clickable affordance derived from a profile field,
// e.g. "mailto:john@domain.com". Priority must be between 0 and 99;
// actions are arranged in ascending order of priority.
type Action interface {
	Title() string
	Priority() int
	Icon() string
	Target() string
}

// Provider builds an Action from a field's disclosed value.
type Provider func(value string) Action

// Registry maps field identifiers to action providers. The caller
// populates it explicitly at wiring time; there is no ambient global.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(fieldID string, p Provider) {
	r.providers[fieldID] = p
}

// For returns the actions eligible for the viewer, ascending by
// priority. Fields without a registered provider, without a value, or
// failing the eligibility rule are skipped.
func (r *Registry) For(fields []visibility.ProfileField, ctx visibility.ViewerContext) []Action {
	var out []Action
	for _, field := range fields {
		if field.Value == nil || *field.Value == "" {
			continue
		}
		if !Eligible(field.Scope, ctx) {
			continue
		}
		provider, ok := r.providers[field.ID]
		if !ok {
			continue
		}
		out = append(out, provider(*field.Value))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// Eligible applies the action rule, which is stricter than plain
// value disclosure: a Private field never yields an action, and a
// Local field yields one only to authenticated viewers even though
// anonymous same-instance viewers may see its value.
func Eligible(scope visibility.Scope, ctx visibility.ViewerContext) bool {
	switch scope {
	case visibility.ScopePrivate:
		return false
	case visibility.ScopeLocal:
		return ctx.IsAuthenticated
	case visibility.ScopeFederated, visibility.ScopePublished:
		return federationActionVerified(ctx)
	default:
		return false
	}
}

// federationActionVerified reports whether the remote server has
// completed the action verification handshake. The handshake protocol
// is not implemented, so federated actions are never offered.
func federationActionVerified(ctx visibility.ViewerContext) bool {
	return false
}
