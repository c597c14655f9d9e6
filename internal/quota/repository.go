package quota

import (
	"context"

	"gorm.io/gorm"

	"github.com/cvforge/gateway/internal/models"
	"github.com/cvforge/gateway/internal/storage"
)

// Repository persists usage records. The gorm implementation is the real
// one; tests substitute an in-memory fake.
type Repository interface {
	Find(ctx context.Context, userID string) (*models.UsageRecord, error)
	Create(ctx context.Context, record *models.UsageRecord) error
	Save(ctx context.Context, record *models.UsageRecord) error
}

type GormRepository struct {
	db *storage.Postgres
}

func NewRepository(db *storage.Postgres) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Find(ctx context.Context, userID string) (*models.UsageRecord, error) {
	var record models.UsageRecord
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *GormRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	return r.db.DB.WithContext(ctx).Create(record).Error
}

func (r *GormRepository) Save(ctx context.Context, record *models.UsageRecord) error {
	return r.db.DB.WithContext(ctx).Save(record).Error
}
