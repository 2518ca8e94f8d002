package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KristianPetrov/1uplabs/internal/model"
)

type OverrideRepository interface {
	FindMany(ctx context.Context, slugs []string) ([]*model.PriceOverride, error)
	Upsert(ctx context.Context, override *model.PriceOverride) error
	Delete(ctx context.Context, slug string) error
	// DecrementInventory subtracts qty from the override's inventory in a
	// single conditional UPDATE that only applies while the stored inventory
	// is >= qty. Returns false when the condition did not hold, i.e. the
	// product just went out of stock.
	DecrementInventory(ctx context.Context, tx *gorm.DB, slug string, qty int64) (bool, error)
	GetInventory(ctx context.Context, tx *gorm.DB, slug string) (*int64, error)
}

type overrideRepoImpl struct {
	db *gorm.DB
}

func NewOverrideRepository(db *gorm.DB) OverrideRepository {
	return &overrideRepoImpl{
		db: db,
	}
}

func (r *overrideRepoImpl) FindMany(ctx context.Context, slugs []string) ([]*model.PriceOverride, error) {
	var overrides []*model.PriceOverride
	err := r.db.WithContext(ctx).
		Where("slug IN ?", slugs).
		Find(&overrides).Error

	if err != nil {
		return nil, err
	}

	return overrides, nil
}

func (r *overrideRepoImpl) Upsert(ctx context.Context, override *model.PriceOverride) error {
	override.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"price_cents": override.PriceCents,
			"inventory":   override.Inventory,
			"updated_at":  override.UpdatedAt,
		}),
	}).Create(override).Error
}

func (r *overrideRepoImpl) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Delete(&model.PriceOverride{}).Error
}

func (r *overrideRepoImpl) DecrementInventory(ctx context.Context, tx *gorm.DB, slug string, qty int64) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PriceOverride{}).
		Where("slug = ? AND inventory >= ?", slug, qty).
		Updates(map[string]interface{}{
			"inventory":  gorm.Expr("inventory - ?", qty),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *overrideRepoImpl) GetInventory(ctx context.Context, tx *gorm.DB, slug string) (*int64, error) {
	var override model.PriceOverride
	err := tx.WithContext(ctx).
		Where("slug = ?", slug).
		First(&override).Error

	if err != nil {
		return nil, err
	}

	return override.Inventory, nil
}
