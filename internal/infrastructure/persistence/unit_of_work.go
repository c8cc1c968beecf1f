package persistence

import (
	"context"

	"github.com/colegio/backend/internal/domain/tuition"
	"gorm.io/gorm"
)

// GormUnitOfWork implements tuition.UnitOfWork on a GORM connection.
// Execute runs the given function against repositories bound to a single
// database transaction; any returned error rolls the whole thing back.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside one database transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos tuition.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// NewRepositories binds the tuition repositories to one data source,
// either the root connection or a transaction.
func NewRepositories(db *gorm.DB) tuition.Repositories {
	return tuition.Repositories{
		Obligations:    NewGormObligationRepository(db),
		PaymentDetails: NewGormPaymentDetailRepository(db),
		Receipts:       NewGormReceiptRepository(db),
	}
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ tuition.UnitOfWork = (*GormUnitOfWork)(nil)
