package persistence

import (
	"context"
	"errors"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByObligation finds the receipt of an obligation, if any
func (r *GormReceiptRepository) FindByObligation(ctx context.Context, obligationID uuid.UUID) (*tuition.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMonth finds the receipt for one student/cycle/year/month
func (r *GormReceiptRepository) FindByMonth(ctx context.Context, key tuition.MonthKey) (*tuition.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND cycle_id = ? AND year = ? AND month = ?",
			key.StudentID, key.CycleID, key.Year, key.Month).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReceiptNo finds a receipt by its human-readable number
func (r *GormReceiptRepository) FindByReceiptNo(ctx context.Context, receiptNo string) (*tuition.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("receipt_no = ?", receiptNo).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds all receipts of one student in a cycle
func (r *GormReceiptRepository) FindByStudent(ctx context.Context, studentID, cycleID uuid.UUID) ([]tuition.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND cycle_id = ?", studentID, cycleID).
		Order("year ASC, month ASC").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	receipts := make([]tuition.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = *model.ToDomain()
	}
	return receipts, nil
}

// Create inserts a new receipt and loads the store-assigned correlativo
// back into the aggregate so the caller can assign the receipt number
// inside the same transaction.
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *tuition.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	receipt.Correlativo = model.Correlativo
	return nil
}

// SaveWithLock updates a receipt with optimistic locking
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, receipt *tuition.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", receipt.ID, receipt.Version-1).
		Updates(map[string]interface{}{
			"receipt_no": model.ReceiptNo,
			"total":      model.Total,
			"total_paid": model.TotalPaid,
			"issued_by":  model.IssuedBy,
			"payments":   model.Payments,
			"updated_at": model.UpdatedAt,
			"version":    model.Version,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ tuition.ReceiptRepository = (*GormReceiptRepository)(nil)
