package persistence

import (
	"context"
	"errors"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentDetailRepository implements PaymentDetailRepository using GORM.
// The ledger table is insert-only; there is deliberately no Update or Delete.
type GormPaymentDetailRepository struct {
	db *gorm.DB
}

// NewGormPaymentDetailRepository creates a new GormPaymentDetailRepository
func NewGormPaymentDetailRepository(db *gorm.DB) *GormPaymentDetailRepository {
	return &GormPaymentDetailRepository{db: db}
}

// FindByID finds a payment detail by its ID
func (r *GormPaymentDetailRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.PaymentDetail, error) {
	var model models.PaymentDetailModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByObligation returns the full ledger of an obligation ordered by
// payment date, then creation time
func (r *GormPaymentDetailRepository) FindByObligation(ctx context.Context, obligationID uuid.UUID) ([]tuition.PaymentDetail, error) {
	var detailModels []models.PaymentDetailModel
	if err := r.db.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("date ASC, created_at ASC").
		Find(&detailModels).Error; err != nil {
		return nil, err
	}
	details := make([]tuition.PaymentDetail, len(detailModels))
	for i, model := range detailModels {
		details[i] = *model.ToDomain()
	}
	return details, nil
}

// Append inserts a new ledger entry
func (r *GormPaymentDetailRepository) Append(ctx context.Context, detail *tuition.PaymentDetail) error {
	model := models.PaymentDetailModelFromDomain(detail)
	return r.db.WithContext(ctx).Create(model).Error
}

// SumByObligation re-aggregates the total paid over the whole ledger
func (r *GormPaymentDetailRepository) SumByObligation(ctx context.Context, obligationID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentDetailModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("obligation_id = ?", obligationID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountByObligation counts ledger entries of an obligation
func (r *GormPaymentDetailRepository) CountByObligation(ctx context.Context, obligationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentDetailModel{}).
		Where("obligation_id = ?", obligationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPaymentDetailRepository implements PaymentDetailRepository
var _ tuition.PaymentDetailRepository = (*GormPaymentDetailRepository)(nil)
