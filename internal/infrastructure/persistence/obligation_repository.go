package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/colegio/backend/internal/domain/shared"
	"github.com/colegio/backend/internal/domain/tuition"
	"github.com/colegio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormObligationRepository implements ObligationRepository using GORM
type GormObligationRepository struct {
	db *gorm.DB
}

// NewGormObligationRepository creates a new GormObligationRepository
func NewGormObligationRepository(db *gorm.DB) *GormObligationRepository {
	return &GormObligationRepository{db: db}
}

// FindByID finds an obligation by its ID
func (r *GormObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.Obligation, error) {
	var model models.ObligationModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMonth finds the obligation for one student/cycle/year/month
func (r *GormObligationRepository) FindByMonth(ctx context.Context, key tuition.MonthKey) (*tuition.Obligation, error) {
	var model models.ObligationModel
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

// FindByMonthForUpdate finds the obligation for one month with a FOR UPDATE
// row lock. Concurrent ledger appends on the same month serialize here.
func (r *GormObligationRepository) FindByMonthForUpdate(ctx context.Context, key tuition.MonthKey) (*tuition.Obligation, error) {
	var model models.ObligationModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
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

// FindAll finds obligations with filtering
func (r *GormObligationRepository) FindAll(ctx context.Context, filter tuition.ObligationFilter) ([]tuition.Obligation, error) {
	var obligationModels []models.ObligationModel
	query := r.db.WithContext(ctx).Model(&models.ObligationModel{})
	query = r.applyObligationFilter(query, filter)

	if err := query.Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	obligations := make([]tuition.Obligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// FindByStudent finds all obligations of one student in a cycle ordered by (year, month)
func (r *GormObligationRepository) FindByStudent(ctx context.Context, studentID, cycleID uuid.UUID) ([]tuition.Obligation, error) {
	var obligationModels []models.ObligationModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND cycle_id = ?", studentID, cycleID).
		Order("year ASC, month ASC").
		Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	obligations := make([]tuition.Obligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// FindByCycleMonth finds every student's obligation for one cycle month
func (r *GormObligationRepository) FindByCycleMonth(ctx context.Context, cycleID uuid.UUID, year, month int) ([]tuition.Obligation, error) {
	var obligationModels []models.ObligationModel
	if err := r.db.WithContext(ctx).
		Where("cycle_id = ? AND year = ? AND month = ?", cycleID, year, month).
		Order("student_id ASC").
		Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	obligations := make([]tuition.Obligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// Save creates or updates an obligation
func (r *GormObligationRepository) Save(ctx context.Context, obligation *tuition.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormObligationRepository) SaveWithLock(ctx context.Context, obligation *tuition.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", obligation.ID, obligation.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Count counts obligations matching the filter
func (r *GormObligationRepository) Count(ctx context.Context, filter tuition.ObligationFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ObligationModel{})
	query = r.applyObligationFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumBalanceByStudent calculates the total outstanding balance of a student
func (r *GormObligationRepository) SumBalanceByStudent(ctx context.Context, studentID, cycleID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ObligationModel{}).
		Select("COALESCE(SUM(balance), 0) as total").
		Where("student_id = ? AND cycle_id = ? AND status IN ?", studentID, cycleID,
			[]tuition.ObligationStatus{tuition.ObligationStatusUnpaid, tuition.ObligationStatusPartial}).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyObligationFilter applies filter options to the query
func (r *GormObligationRepository) applyObligationFilter(query *gorm.DB, filter tuition.ObligationFilter) *gorm.DB {
	query = r.applyObligationFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ObligationSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("year ASC, month ASC")
	}

	return query
}

// applyObligationFilterWithoutPagination applies filter options without pagination
func (r *GormObligationRepository) applyObligationFilterWithoutPagination(query *gorm.DB, filter tuition.ObligationFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("concept ILIKE ?", searchPattern)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.CycleID != nil {
		query = query.Where("cycle_id = ?", *filter.CycleID)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date < ? AND status IN ?", time.Now(),
			[]tuition.ObligationStatus{tuition.ObligationStatusUnpaid, tuition.ObligationStatusPartial})
	}

	return query
}

// Ensure GormObligationRepository implements ObligationRepository
var _ tuition.ObligationRepository = (*GormObligationRepository)(nil)
