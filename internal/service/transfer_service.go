package service

import (
	"context"
	"strings"
	"time"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// LegacyDevice is one record of the spreadsheet-era export format, with its
// original Croatian column names.
type LegacyDevice struct {
	OrderNumber  string `json:"Broj naloga"`
	Brand        string `json:"Marka"`
	Model        string `json:"Model"`
	PurchaseDate string `json:"Datum otkupa"`
	IMEI         string `json:"IMEI"`
	Status       string `json:"Status"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type TransferService interface {
	ImportLegacy(ctx context.Context, records []LegacyDevice) (*ImportResult, error)
	ExportDevices(ctx context.Context) ([]DeviceResponse, error)
}

type transferService struct {
	devices   repository.DeviceRepository
	sequences repository.SequenceRepository
	txManager repository.TransactionManager
	notifier  ChangeNotifier
}

func NewTransferService(
	devices repository.DeviceRepository,
	sequences repository.SequenceRepository,
	txManager repository.TransactionManager,
	notifier ChangeNotifier,
) TransferService {
	return &transferService{devices: devices, sequences: sequences, txManager: txManager, notifier: notifier}
}

// cleanLegacyModel strips the brand prefix the old sheets packed into the
// model column ("Apple / iPhone 12" becomes "iPhone 12").
func cleanLegacyModel(raw string) string {
	parts := strings.Split(raw, "/")
	return strings.TrimSpace(parts[len(parts)-1])
}

func mapLegacyStatus(raw string) string {
	switch strings.TrimSpace(raw) {
	case "Zatvoren":
		return model.StatusSold
	case "Otvoren":
		return model.StatusInStock
	default:
		return model.StatusInStock
	}
}

func parseLegacyDate(raw string) time.Time {
	for _, layout := range []string{dateLayout, "2.1.2006.", "2.1.2006", "02.01.2006."} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t
		}
	}
	return time.Now()
}

// ImportLegacy books legacy records in as devices. Records missing a brand or
// a usable model are skipped; everything else gets archive defaults. Imports
// never push stock to the storefront.
func (s *transferService) ImportLegacy(ctx context.Context, records []LegacyDevice) (*ImportResult, error) {
	result := &ImportResult{}

	for _, rec := range records {
		brand := strings.TrimSpace(rec.Brand)
		deviceModel := cleanLegacyModel(rec.Model)
		if brand == "" || deviceModel == "" {
			result.Skipped++
			continue
		}

		device := &model.Device{
			Brand:          brand,
			Model:          deviceModel,
			IMEI:           strings.TrimSpace(rec.IMEI),
			Condition:      model.ConditionUsed,
			Status:         mapLegacyStatus(rec.Status),
			PurchasePrice:  decimal.Zero,
			AdditionalCost: decimal.Zero,
			PurchaseDate:   parseLegacyDate(rec.PurchaseDate),
			SellerName:     "Uvezeno",
			SellerIDNumber: "-",
			Notes:          []model.Note{},
		}

		legacyNumber := strings.TrimSpace(rec.OrderNumber)
		if legacyNumber != "" {
			device.OrderNumber = legacyNumber
			err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
				return s.devices.Create(txCtx, device)
			})
			if err != nil {
				return nil, err
			}
		} else {
			// No legacy number on the sheet; issue a fresh one so the
			// unique order number rule still holds.
			if err := createWithOrderNumber(ctx, s.txManager, s.sequences, s.devices, device); err != nil {
				return nil, err
			}
		}
		result.Imported++
	}

	if result.Imported > 0 && s.notifier != nil {
		s.notifier.NotifyChanged("devices")
	}
	return result, nil
}

func (s *transferService) ExportDevices(ctx context.Context) ([]DeviceResponse, error) {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]DeviceResponse, 0, len(devices))
	for i := range devices {
		res = append(res, mapDeviceToResponse(&devices[i]))
	}
	return res, nil
}
