package service

import (
	"context"
	"errors"
	"fmt"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"

	"gorm.io/gorm"
)

// defaultReceiptText is the consent boilerplate printed on purchase receipts
// until the shop saves its own wording.
const defaultReceiptText = "Svojim potpisom dajem privolu za obradu osobnih podataka u svrhu sklapanja ugovora o otkupu uređaja te potvrđujem da sam zakoniti vlasnik uređaja koji prodajem."

type ReceiptSettingsDTO struct {
	Text string `json:"text"`
}

type CompanyProfileDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type StorefrontCredentialsDTO struct {
	Endpoint       string `json:"endpoint"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	BearerToken    string `json:"bearer_token"`
}

type SettingsService interface {
	GetReceipt(ctx context.Context) (*ReceiptSettingsDTO, error)
	UpdateReceipt(ctx context.Context, dto ReceiptSettingsDTO) (*ReceiptSettingsDTO, error)
	GetCompany(ctx context.Context) (*CompanyProfileDTO, error)
	UpdateCompany(ctx context.Context, dto CompanyProfileDTO) (*CompanyProfileDTO, error)
	GetStorefront(ctx context.Context) (*StorefrontCredentialsDTO, error)
	UpdateStorefront(ctx context.Context, dto StorefrontCredentialsDTO) (*StorefrontCredentialsDTO, error)
}

type settingsService struct {
	settings repository.SettingsRepository
}

func NewSettingsService(settings repository.SettingsRepository) SettingsService {
	return &settingsService{settings: settings}
}

func (s *settingsService) GetReceipt(ctx context.Context) (*ReceiptSettingsDTO, error) {
	saved, err := s.settings.GetReceipt(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Defaults are served, not persisted, until the first save.
		return &ReceiptSettingsDTO{Text: defaultReceiptText}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt settings: %w", err)
	}
	return &ReceiptSettingsDTO{Text: saved.Text}, nil
}

func (s *settingsService) UpdateReceipt(ctx context.Context, dto ReceiptSettingsDTO) (*ReceiptSettingsDTO, error) {
	if err := s.settings.SaveReceipt(ctx, &model.ReceiptSettings{Text: dto.Text}); err != nil {
		return nil, fmt.Errorf("failed to save receipt settings: %w", err)
	}
	return &dto, nil
}

func (s *settingsService) GetCompany(ctx context.Context) (*CompanyProfileDTO, error) {
	saved, err := s.settings.GetCompany(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &CompanyProfileDTO{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company profile: %w", err)
	}
	return &CompanyProfileDTO{
		Name:    saved.Name,
		Address: saved.Address,
		TaxID:   saved.TaxID,
		Phone:   saved.Phone,
		Email:   saved.Email,
	}, nil
}

func (s *settingsService) UpdateCompany(ctx context.Context, dto CompanyProfileDTO) (*CompanyProfileDTO, error) {
	profile := &model.CompanyProfile{
		Name:    dto.Name,
		Address: dto.Address,
		TaxID:   dto.TaxID,
		Phone:   dto.Phone,
		Email:   dto.Email,
	}
	if err := s.settings.SaveCompany(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save company profile: %w", err)
	}
	return &dto, nil
}

func (s *settingsService) GetStorefront(ctx context.Context) (*StorefrontCredentialsDTO, error) {
	saved, err := s.settings.GetStorefront(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StorefrontCredentialsDTO{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load storefront credentials: %w", err)
	}
	return &StorefrontCredentialsDTO{
		Endpoint:       saved.Endpoint,
		ConsumerKey:    saved.ConsumerKey,
		ConsumerSecret: saved.ConsumerSecret,
		BearerToken:    saved.BearerToken,
	}, nil
}

func (s *settingsService) UpdateStorefront(ctx context.Context, dto StorefrontCredentialsDTO) (*StorefrontCredentialsDTO, error) {
	creds := &model.StorefrontCredentials{
		Endpoint:       dto.Endpoint,
		ConsumerKey:    dto.ConsumerKey,
		ConsumerSecret: dto.ConsumerSecret,
		BearerToken:    dto.BearerToken,
	}
	if err := s.settings.SaveStorefront(ctx, creds); err != nil {
		return nil, fmt.Errorf("failed to save storefront credentials: %w", err)
	}
	return &dto, nil
}
