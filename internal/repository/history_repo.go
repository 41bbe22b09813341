package repository

import (
	"context"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"

	"gorm.io/gorm"
)

// HistoryFilter narrows GetHistory queries; zero values mean "no filter".
type HistoryFilter struct {
	From        *time.Time
	To          *time.Time
	Service     string
	MinQuantity int
	MaxQuantity int
	Fingerprint string
}

// HistoryRepository is append-only: records are created and queried, never
// updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, rec *model.QuoteHistory) error
	Search(ctx context.Context, filter HistoryFilter, page, limit int) ([]model.QuoteHistory, int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, rec *model.QuoteHistory) error {
	return GetDB(ctx, r.db).Create(rec).Error
}

func (r *historyRepository) Search(ctx context.Context, filter HistoryFilter, page, limit int) ([]model.QuoteHistory, int64, error) {
	var records []model.QuoteHistory
	var total int64

	query := GetDB(ctx, r.db).Model(&model.QuoteHistory{})
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.Service != "" {
		query = query.Where("service = ?", filter.Service)
	}
	if filter.MinQuantity > 0 {
		query = query.Where("quantity >= ?", filter.MinQuantity)
	}
	if filter.MaxQuantity > 0 {
		query = query.Where("quantity <= ?", filter.MaxQuantity)
	}
	if filter.Fingerprint != "" {
		query = query.Where("fingerprint = ?", filter.Fingerprint)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
