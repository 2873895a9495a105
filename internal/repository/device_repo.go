package repository

import (
	"context"

	"otkup-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *model.Device) error
	Update(ctx context.Context, device *model.Device) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error)
	ListAll(ctx context.Context) ([]model.Device, error)
	CountReferencingEmployee(ctx context.Context, name string) (int64, error)
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(ctx context.Context, device *model.Device) error {
	return GetDB(ctx, r.db).Create(device).Error
}

func (r *deviceRepository) Update(ctx context.Context, device *model.Device) error {
	return GetDB(ctx, r.db).Save(device).Error
}

// UpdateFields applies a partial, merge-style update. Used by status
// transitions so unrelated concurrent field edits are not clobbered.
func (r *deviceRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Device{}).Where("id = ?", id).Updates(fields).Error
}

// Delete is a hard delete; the model carries no soft-delete column.
func (r *deviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Device{}).Error
}

func (r *deviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	var device model.Device
	if err := GetDB(ctx, r.db).First(&device, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// ListAll returns the full device snapshot in insertion order. The filter,
// template and statistics engines all operate on this snapshot in memory.
func (r *deviceRepository) ListAll(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := GetDB(ctx, r.db).Order("created_at asc").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *deviceRepository) CountReferencingEmployee(ctx context.Context, name string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Device{}).
		Where("purchased_by = ? OR tested_by = ? OR sold_by = ?", name, name, name).
		Count(&count).Error
	return count, err
}
