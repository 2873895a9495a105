package repository

import (
	"context"
	"errors"

	"otkup-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettingsRepository persists the three singleton settings records. Reads
// return gorm.ErrRecordNotFound when a record has never been saved; the
// service layer substitutes defaults in that case. Saves upsert: the existing
// row's identity is reused so the table never grows past one row per record.
type SettingsRepository interface {
	GetReceipt(ctx context.Context) (*model.ReceiptSettings, error)
	SaveReceipt(ctx context.Context, settings *model.ReceiptSettings) error
	GetCompany(ctx context.Context) (*model.CompanyProfile, error)
	SaveCompany(ctx context.Context, profile *model.CompanyProfile) error
	GetStorefront(ctx context.Context) (*model.StorefrontCredentials, error)
	SaveStorefront(ctx context.Context, creds *model.StorefrontCredentials) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetReceipt(ctx context.Context) (*model.ReceiptSettings, error) {
	var settings model.ReceiptSettings
	if err := GetDB(ctx, r.db).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) SaveReceipt(ctx context.Context, settings *model.ReceiptSettings) error {
	db := GetDB(ctx, r.db)

	var existing model.ReceiptSettings
	err := db.First(&existing).Error
	if err == nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	} else if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}

	return db.Save(settings).Error
}

func (r *settingsRepository) GetCompany(ctx context.Context) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	if err := GetDB(ctx, r.db).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *settingsRepository) SaveCompany(ctx context.Context, profile *model.CompanyProfile) error {
	db := GetDB(ctx, r.db)

	var existing model.CompanyProfile
	err := db.First(&existing).Error
	if err == nil {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	} else if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	return db.Save(profile).Error
}

func (r *settingsRepository) GetStorefront(ctx context.Context) (*model.StorefrontCredentials, error) {
	var creds model.StorefrontCredentials
	if err := GetDB(ctx, r.db).First(&creds).Error; err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *settingsRepository) SaveStorefront(ctx context.Context, creds *model.StorefrontCredentials) error {
	db := GetDB(ctx, r.db)

	var existing model.StorefrontCredentials
	err := db.First(&existing).Error
	if err == nil {
		creds.ID = existing.ID
		creds.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	} else if creds.ID == uuid.Nil {
		creds.ID = uuid.New()
	}

	return db.Save(creds).Error
}
