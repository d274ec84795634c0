package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openprofile/openprofile"
	"github.com/openprofile/openprofile/client"
	"github.com/openprofile/openprofile/internal/domain"
	"github.com/openprofile/openprofile/internal/infra/database/models"
)

type TrustRepository struct {
	db     *gorm.DB
	client *client.Client
}

func NewTrustRepository(db *gorm.DB, cl *client.Client) *TrustRepository {
	return &TrustRepository{db: db, client: cl}
}

// Lookup returns the registry entry for a server domain. Unknown
// servers are fetched once for their descriptor and recorded as
// pending; trust itself is only ever granted by an explicit registry
// entry with status ok.
func (r *TrustRepository) Lookup(ctx context.Context, serverDomain string) (domain.TrustedServer, error) {

	var server models.TrustedServer
	err := r.db.WithContext(ctx).
		Where("domain = ?", serverDomain).
		Take(&server).Error
	if err == nil {
		result := domain.TrustedServer{
			Domain:       server.Domain,
			URL:          server.URL,
			Status:       server.Status,
			SharedSecret: server.SharedSecret,
		}
		if server.WellKnown != "" {
			var wkp openprofile.WellKnownProfile
			if err := json.Unmarshal([]byte(server.WellKnown), &wkp); err == nil {
				result.WellKnown = wkp
			}
		}
		return result, nil
	}
	if err != gorm.ErrRecordNotFound {
		return domain.TrustedServer{}, err
	}

	if r.client == nil {
		return domain.TrustedServer{}, domain.NotFoundError{Resource: "trusted server"}
	}

	wkp, err := r.client.GetWellKnown(ctx, serverDomain)
	if err != nil {
		return domain.TrustedServer{}, domain.NotFoundError{Resource: "trusted server"}
	}

	serialized, err := json.Marshal(wkp)
	if err != nil {
		return domain.TrustedServer{}, err
	}

	newServer := models.TrustedServer{
		Domain:    serverDomain,
		URL:       "https://" + serverDomain,
		Status:    domain.TrustStatusPending,
		WellKnown: string(serialized),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "well_known"}),
	}).Create(&newServer).Error
	if err != nil {
		return domain.TrustedServer{}, err
	}

	return domain.TrustedServer{
		Domain:    newServer.Domain,
		URL:       newServer.URL,
		Status:    newServer.Status,
		WellKnown: wkp,
	}, nil
}
