package usecase

import (
	"context"

	"github.com/openprofile/openprofile"
	"github.com/openprofile/openprofile/internal/domain"
)

// AccountRepository defines persistence/lookup for profile owners.
type AccountRepository interface {
	GetAccount(ctx context.Context, userID string) (domain.Account, error)
	UpsertProperty(ctx context.Context, userID string, prop domain.Property) error
}

// TrustRepository defines lookup against the federation trust
// registry.
type TrustRepository interface {
	Lookup(ctx context.Context, serverDomain string) (domain.TrustedServer, error)
}

// StatusSource supplies the optional presence status shown on a
// profile page.
type StatusSource interface {
	GetStatus(ctx context.Context, userID string) (*openprofile.ProfileStatus, error)
}

// SignalPublisher broadcasts profile change events.
type SignalPublisher interface {
	Publish(ctx context.Context, channel string, event openprofile.ProfileEvent) error
}
