package usecase

import (
	"context"
	"errors"

	"github.com/openprofile/openprofile/internal/domain"
)

type TrustUsecase struct {
	repo TrustRepository
}

func NewTrustUsecase(repo TrustRepository) *TrustUsecase {
	return &TrustUsecase{repo: repo}
}

// Peer returns the registry entry for a server domain. Unknown
// servers come back as a zero entry, which never grants trust.
func (uc *TrustUsecase) Peer(ctx context.Context, serverDomain string) (domain.TrustedServer, error) {
	if serverDomain == "" {
		return domain.TrustedServer{}, nil
	}
	server, err := uc.repo.Lookup(ctx, serverDomain)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TrustedServer{}, nil
		}
		return domain.TrustedServer{}, err
	}
	return server, nil
}

// IsTrusted reports whether the given server domain is federation
// trusted. Unknown servers and lookup failures are not trusted.
func (uc *TrustUsecase) IsTrusted(ctx context.Context, serverDomain string) (bool, error) {
	server, err := uc.Peer(ctx, serverDomain)
	if err != nil {
		return false, err
	}
	return server.Trusted(), nil
}
