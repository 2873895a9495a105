package service

import (
	"context"
	"errors"
	"fmt"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"
	"otkup-backend/internal/storefront"

	"gorm.io/gorm"
)

// SyncService recomputes storefront stock counts from the device snapshot
// and pushes them to the external shop.
type SyncService interface {
	Sync(ctx context.Context) (string, error)
}

type syncService struct {
	devices  repository.DeviceRepository
	settings repository.SettingsRepository
}

func NewSyncService(devices repository.DeviceRepository, settings repository.SettingsRepository) SyncService {
	return &syncService{devices: devices, settings: settings}
}

// BuildSyncPayload aggregates per-product stock counts. Only web-listed
// devices with a storefront product id participate: each in-stock unit adds
// one, while any other status only pins the product at zero so delisted
// stock still overwrites a stale positive count upstream.
func BuildSyncPayload(devices []model.Device) map[string]int {
	counts := map[string]int{}
	for i := range devices {
		d := &devices[i]
		if !d.ForWeb || d.ExternalProductID == "" {
			continue
		}
		if d.Status == model.StatusInStock {
			counts[d.ExternalProductID]++
		} else if _, seen := counts[d.ExternalProductID]; !seen {
			counts[d.ExternalProductID] = 0
		}
	}
	return counts
}

func (s *syncService) Sync(ctx context.Context) (string, error) {
	creds, err := s.settings.GetStorefront(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.New("storefront credentials are not configured")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load storefront credentials: %w", err)
	}
	if creds.ConsumerKey == "" || creds.ConsumerSecret == "" {
		return "", errors.New("storefront credentials are not configured")
	}

	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return "", err
	}

	payload := BuildSyncPayload(devices)
	if len(payload) == 0 {
		return "no web-listed devices to sync", nil
	}

	client := storefront.NewClient(creds.Endpoint, creds.BearerToken)
	message, err := client.UpdateStock(ctx, payload)
	if err != nil {
		var apiErr *storefront.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("storefront rejected stock update: %w", apiErr)
		}
		return "", fmt.Errorf("storefront unreachable: %w", err)
	}
	return message, nil
}
