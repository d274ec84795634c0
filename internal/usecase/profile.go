package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/openprofile/openprofile"
	"github.com/openprofile/openprofile/actions"
	"github.com/openprofile/openprofile/internal/domain"
	"github.com/openprofile/openprofile/visibility"
)

type ProfileUsecase struct {
	accounts AccountRepository
	registry *actions.Registry
	status   StatusSource
	signal   SignalPublisher
}

// NewProfileUsecase wires the profile page assembly. status and
// signal may be nil when the deployment has no status app or event
// bus.
func NewProfileUsecase(
	accounts AccountRepository,
	registry *actions.Registry,
	status StatusSource,
	signal SignalPublisher,
) *ProfileUsecase {
	return &ProfileUsecase{
		accounts: accounts,
		registry: registry,
		status:   status,
		signal:   signal,
	}
}

// GetProfile resolves the owner's profile for the given viewer. The
// enabled gate runs first; a disabled or undecodable flag returns
// ErrProfileDisabled before any field is evaluated.
func (uc *ProfileUsecase) GetProfile(ctx context.Context, userID string, viewer visibility.ViewerContext) (openprofile.ProfileDocument, error) {
	account, err := uc.accounts.GetAccount(ctx, userID)
	if err != nil {
		return openprofile.ProfileDocument{}, errors.Wrap(err, "ProfileUsecase.GetProfile: account lookup failed")
	}

	if !visibility.ProfileEnabled(account.PropertyValue(visibility.FieldProfileEnabled)) {
		return openprofile.ProfileDocument{}, domain.ErrProfileDisabled
	}

	displayFields := catalogFields(account, visibility.DisplayFields)
	projection := visibility.Resolve(displayFields, viewer)

	avatarScope := visibility.ScopeInvalid
	if p := account.Property(visibility.FieldAvatar); p != nil {
		avatarScope = visibility.ParseScope(p.Scope)
	}

	doc := openprofile.ProfileDocument{
		UserID:            account.UserID,
		Parameters:        projection,
		IsAvatarDisplayed: visibility.AvatarVisible(avatarScope, viewer),
		Actions:           uc.eligibleActions(account, viewer),
	}

	if uc.status != nil {
		status, err := uc.status.GetStatus(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "status lookup failed",
				slog.String("userId", userID),
				slog.String("error", err.Error()),
			)
		} else {
			doc.Status = status
		}
	}

	return doc, nil
}

func (uc *ProfileUsecase) eligibleActions(account domain.Account, viewer visibility.ViewerContext) []openprofile.ProfileAction {
	fields := catalogFields(account, visibility.ActionFields)
	eligible := uc.registry.For(fields, viewer)

	out := make([]openprofile.ProfileAction, 0, len(eligible))
	for _, a := range eligible {
		out = append(out, openprofile.ProfileAction{
			Title:    a.Title(),
			Priority: a.Priority(),
			Icon:     a.Icon(),
			Target:   a.Target(),
		})
	}
	return out
}

// UpdateProperty stores a new value/scope for one property. Only the
// owner's own session may write; the scope must be one of the four
// defined values.
func (uc *ProfileUsecase) UpdateProperty(ctx context.Context, requesterID, userID string, prop domain.Property) error {
	if requesterID == "" || requesterID != userID {
		return domain.ErrForbidden
	}
	if visibility.ParseScope(prop.Scope) == visibility.ScopeInvalid {
		return domain.ErrInvalidScope
	}

	err := uc.accounts.UpsertProperty(ctx, userID, prop)
	if err != nil {
		return errors.Wrap(err, "ProfileUsecase.UpdateProperty: upsert failed")
	}

	if uc.signal != nil {
		event := openprofile.ProfileEvent{
			Type:      openprofile.EventPropertyUpdated,
			UserID:    userID,
			Property:  prop.Name,
			Timestamp: time.Now().UTC(),
		}
		if err := uc.signal.Publish(ctx, "profile:"+userID, event); err != nil {
			slog.WarnContext(ctx, "event publish failed",
				slog.String("userId", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// catalogFields projects the account's stored properties onto the
// given catalog, keeping catalog order. A property the owner never
// set yields a field with no value and an invalid scope, which the
// resolver withholds.
func catalogFields(account domain.Account, catalog []string) []visibility.ProfileField {
	fields := make([]visibility.ProfileField, 0, len(catalog))
	for _, id := range catalog {
		field := visibility.ProfileField{ID: id}
		if prop := account.Property(id); prop != nil {
			field.Scope = visibility.ParseScope(prop.Scope)
			value := prop.Value
			field.Value = &value
		}
		fields = append(fields, field)
	}
	return fields
}
