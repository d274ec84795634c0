package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/openprofile/openprofile"
)

type StatusRepository struct {
	rdb *redis.Client
}

func NewStatusRepository(rdb *redis.Client) *StatusRepository {
	return &StatusRepository{rdb: rdb}
}

// GetStatus returns the presence status the status app stored for the
// user, or nil when there is none.
func (r *StatusRepository) GetStatus(ctx context.Context, userID string) (*openprofile.ProfileStatus, error) {
	raw, err := r.rdb.Get(ctx, statusKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeStatus(raw)
}

func statusKey(userID string) string {
	return "status:" + userID
}

func decodeStatus(raw []byte) (*openprofile.ProfileStatus, error) {
	var status openprofile.ProfileStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
