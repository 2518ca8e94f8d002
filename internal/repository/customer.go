package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/KristianPetrov/1uplabs/internal/model"
)

type CustomerRepository interface {
	UpdateProfile(ctx context.Context, tx *gorm.DB, userID string, name, phone *string) error
	// UpsertDefaultAddress overwrites the customer's single default address,
	// creating it when none exists yet.
	UpsertDefaultAddress(ctx context.Context, tx *gorm.DB, address *model.CustomerAddress) error
	FindDefaultAddress(ctx context.Context, userID string) (*model.CustomerAddress, error)
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{
		db: db,
	}
}

func (r *customerRepoImpl) UpdateProfile(ctx context.Context, tx *gorm.DB, userID string, name, phone *string) error {
	return tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"name":  name,
			"phone": phone,
		}).Error
}

func (r *customerRepoImpl) UpsertDefaultAddress(ctx context.Context, tx *gorm.DB, address *model.CustomerAddress) error {
	var existing model.CustomerAddress
	err := tx.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", address.UserID, true).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		address.IsDefault = true
		return tx.WithContext(ctx).Create(address).Error
	}
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Model(&model.CustomerAddress{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"name":       address.Name,
			"phone":      address.Phone,
			"address1":   address.Address1,
			"address2":   address.Address2,
			"city":       address.City,
			"state":      address.State,
			"zip":        address.Zip,
			"country":    address.Country,
			"is_default": true,
			"updated_at": time.Now(),
		}).Error
}

func (r *customerRepoImpl) FindDefaultAddress(ctx context.Context, userID string) (*model.CustomerAddress, error) {
	var address model.CustomerAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&address).Error

	if err != nil {
		return nil, err
	}

	return &address, nil
}
