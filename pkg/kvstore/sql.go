package kvstore

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/obohub-backend/pkg/db"
	"github.com/angelmondragon/obohub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores documents in the kv_entries table.
type SQL struct {
	client *db.Client
}

// NewSQL wires the store onto an open database client.
func NewSQL(client *db.Client) *SQL {
	return &SQL{client: client}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.client.DB().WithContext(ctx).
		Where("doc_key = ?", key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *SQL) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	if err := validateKeys(entries); err != nil {
		return err
	}
	rows := make([]models.KVEntry, 0, len(entries))
	for key, value := range entries {
		rows = append(rows, models.KVEntry{Key: strings.TrimSpace(key), Value: value})
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"doc_value", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert kv entries")
		}
		return nil
	})
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
