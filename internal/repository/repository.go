// Package repository is the persistence store: a generic gorm repository per
// entity and a Store that runs multi-row writes in one transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound reports that no row matched. It is an expected outcome, not a
// failure.
var ErrNotFound = errors.New("record not found")

// Repository provides CRUD for one gorm model type.
type Repository[T any] struct {
	db      *gorm.DB
	orderBy []string
}

// NewRepository returns a repository whose list operations sort by orderBy
// (default created_at) and then by primary key.
func NewRepository[T any](db *gorm.DB, orderBy ...string) *Repository[T] {
	if len(orderBy) == 0 {
		orderBy = []string{"created_at"}
	}
	return &Repository[T]{db: db, orderBy: orderBy}
}

// WithTx returns a repository bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx, orderBy: r.orderBy}
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create %T: %w", entity, err)
	}
	return nil
}

// CreateBatch inserts all entities in one statement. An empty slice is a no-op.
func (r *Repository[T]) CreateBatch(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entities).Error; err != nil {
		return fmt.Errorf("create %T batch: %w", entities, err)
	}
	return nil
}

// GetByID returns ErrNotFound when no row has the id.
func (r *Repository[T]) GetByID(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %T: %w", entity, err)
	}
	return &entity, nil
}

// ListAll returns every row in list order.
func (r *Repository[T]) ListAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.ordered(ctx).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("list %T: %w", entities, err)
	}
	return entities, nil
}

// ListWhere returns rows whose field equals value, ordered like ListAll. The
// column name is quoted by gorm.
func (r *Repository[T]) ListWhere(ctx context.Context, field string, value any) ([]T, error) {
	var entities []T
	err := r.ordered(ctx).Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list %T where %s: %w", entities, field, err)
	}
	return entities, nil
}

// FirstWhere returns the first matching row in list order, or ErrNotFound.
func (r *Repository[T]) FirstWhere(ctx context.Context, field string, value any) (*T, error) {
	var entity T
	err := r.ordered(ctx).Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("first %T where %s: %w", entity, field, err)
	}
	return &entity, nil
}

// Update saves every column of entity. Loaded associations are not written.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return fmt.Errorf("update %T: %w", entity, err)
	}
	return nil
}

// Delete removes the row with id and returns ErrNotFound when none existed.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	var entity T
	res := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).Delete(&entity)
	if res.Error != nil {
		return fmt.Errorf("delete %T: %w", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere removes every row whose field equals value and returns the
// number removed.
func (r *Repository[T]) DeleteWhere(ctx context.Context, field string, value any) (int64, error) {
	var entity T
	res := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).Delete(&entity)
	if res.Error != nil {
		return 0, fmt.Errorf("delete %T where %s: %w", entity, field, res.Error)
	}
	return res.RowsAffected, nil
}

// Count returns the number of rows whose field equals value.
func (r *Repository[T]) Count(ctx context.Context, field string, value any) (int64, error) {
	var (
		entity T
		n      int64
	)
	err := r.db.WithContext(ctx).Model(&entity).Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %T where %s: %w", entity, field, err)
	}
	return n, nil
}

func (r *Repository[T]) ordered(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	for _, col := range r.orderBy {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col}})
	}
	return db.Order(clause.OrderByColumn{Column: clause.PrimaryColumn})
}
