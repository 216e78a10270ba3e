package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ssorelay/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQLStore keeps the registry in MySQL through GORM. One row per
// identity, enforced by a unique index; Put is an upsert.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore creates a MySQL-backed registry on an existing connection.
func NewMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Put(ctx context.Context, rec *models.SessionRecord) error {
	row := models.StoredSession{
		Identity:      rec.Identity,
		SessionToken:  rec.SessionToken,
		EstablishedAt: rec.EstablishedAt,
		Profile:       rec.Profile,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_token", "established_at", "profile", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("store session record: %w", err)
	}
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, identity string) (*models.SessionRecord, error) {
	var row models.StoredSession
	err := s.db.WithContext(ctx).Where("identity = ?", identity).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session record: %w", err)
	}
	return rowToRecord(&row), nil
}

func (s *MySQLStore) Remove(ctx context.Context, identity string) (bool, error) {
	res := s.db.WithContext(ctx).Where("identity = ?", identity).Delete(&models.StoredSession{})
	if res.Error != nil {
		return false, fmt.Errorf("delete session record: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *MySQLStore) ListAll(ctx context.Context) ([]*models.SessionRecord, error) {
	var rows []models.StoredSession
	err := s.db.WithContext(ctx).Order("established_at ASC, created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load session records: %w", err)
	}

	records := make([]*models.SessionRecord, len(rows))
	for i := range rows {
		records[i] = rowToRecord(&rows[i])
	}
	return records, nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func rowToRecord(row *models.StoredSession) *models.SessionRecord {
	return &models.SessionRecord{
		Identity:      row.Identity,
		SessionToken:  row.SessionToken,
		EstablishedAt: row.EstablishedAt,
		Profile:       row.Profile,
	}
}
