package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openprofile/openprofile/internal/domain"
	"github.com/openprofile/openprofile/internal/infra/database/models"
)

const accountCacheTTL = 60 // seconds

type AccountRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewAccountRepository builds the account store. mc may be nil to
// disable the cache layer.
func NewAccountRepository(db *gorm.DB, mc *memcache.Client) *AccountRepository {
	return &AccountRepository{db: db, mc: mc}
}

func accountCacheKey(userID string) string {
	return "account:" + userID
}

func (r *AccountRepository) GetAccount(ctx context.Context, userID string) (domain.Account, error) {

	if r.mc != nil {
		item, err := r.mc.Get(accountCacheKey(userID))
		if err == nil {
			var account domain.Account
			if err := json.Unmarshal(item.Value, &account); err == nil {
				return account, nil
			}
		}
	}

	var model models.Account
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Account{}, domain.NotFoundError{Resource: "account"}
		}
		return domain.Account{}, err
	}

	var props []models.AccountProperty
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ordinal ASC, id ASC").
		Find(&props).Error
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		UserID:     model.UserID,
		Properties: make([]domain.Property, 0, len(props)),
	}
	for _, p := range props {
		account.Properties = append(account.Properties, domain.Property{
			Name:     p.Name,
			Value:    p.Value,
			Scope:    p.Scope,
			Verified: p.Verified,
		})
	}

	if r.mc != nil {
		serialized, err := json.Marshal(account)
		if err == nil {
			err = r.mc.Set(&memcache.Item{
				Key:        accountCacheKey(userID),
				Value:      serialized,
				Expiration: accountCacheTTL,
			})
			if err != nil {
				slog.WarnContext(ctx, "account cache set failed",
					slog.String("userId", userID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return account, nil
}

func (r *AccountRepository) UpsertProperty(ctx context.Context, userID string, prop domain.Property) error {

	var exists models.Account
	err := r.db.WithContext(ctx).First(&exists, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.NotFoundError{Resource: "account"}
		}
		return err
	}

	model := models.AccountProperty{
		UserID:   userID,
		Name:     prop.Name,
		Value:    prop.Value,
		Scope:    prop.Scope,
		Verified: prop.Verified,
		MDate:    time.Now().UTC(),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "scope", "verified", "m_date"}),
	}).Create(&model).Error
	if err != nil {
		return err
	}

	if r.mc != nil {
		err = r.mc.Delete(accountCacheKey(userID))
		if err != nil && err != memcache.ErrCacheMiss {
			slog.WarnContext(ctx, "account cache invalidation failed",
				slog.String("userId", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
