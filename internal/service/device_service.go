package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ChangeNotifier pushes collection-changed events to connected clients so
// they can re-fetch the affected snapshot.
type ChangeNotifier interface {
	NotifyChanged(collection string)
}

// StockSyncTrigger is the slice of the sync service status transitions need.
type StockSyncTrigger interface {
	Sync(ctx context.Context) (string, error)
}

// --- DTOs ---

type CreateDeviceRequest struct {
	Brand             string `json:"brand" binding:"required"`
	Model             string `json:"model" binding:"required"`
	Color             string `json:"color"`
	StorageGB         string `json:"storage_gb"`
	IMEI              string `json:"imei"`
	Condition         string `json:"condition" binding:"omitempty,oneof=NEW USED"`
	PurchaseDate      string `json:"purchase_date"` // YYYY-MM-DD, defaults to today
	PurchasePrice     string `json:"purchase_price"`
	SellerName        string `json:"seller_name"`
	SellerIDNumber    string `json:"seller_id_number"`
	SellerAddress     string `json:"seller_address"`
	PurchasedBy       string `json:"purchased_by"`
	TestedBy          string `json:"tested_by"`
	ForWeb            bool   `json:"for_web"`
	ExternalProductID string `json:"external_product_id"`
	Warranty          bool   `json:"warranty"`
	WarrantyEndDate   string `json:"warranty_end_date"`
}

// CreateWebDeviceRequest is the storefront-sourced entry flow. IMEI is
// mandatory here; sourcing fields are fixed placeholders.
type CreateWebDeviceRequest struct {
	Brand             string `json:"brand" binding:"required"`
	Model             string `json:"model" binding:"required"`
	IMEI              string `json:"imei" binding:"required"`
	Color             string `json:"color"`
	StorageGB         string `json:"storage_gb"`
	Condition         string `json:"condition" binding:"omitempty,oneof=NEW USED"`
	PurchasePrice     string `json:"purchase_price"`
	ForWeb            *bool  `json:"for_web"` // defaults to true for web purchases
	ExternalProductID string `json:"external_product_id"`
}

// UpdateDeviceRequest is a merge-style edit: only non-nil fields are applied.
type UpdateDeviceRequest struct {
	Brand             *string `json:"brand"`
	Model             *string `json:"model"`
	Color             *string `json:"color"`
	StorageGB         *string `json:"storage_gb"`
	IMEI              *string `json:"imei"`
	Condition         *string `json:"condition"`
	PurchaseDate      *string `json:"purchase_date"`
	PurchasePrice     *string `json:"purchase_price"`
	AdditionalCost    *string `json:"additional_cost"`
	ActualSalePrice   *string `json:"actual_sale_price"`
	SellerName        *string `json:"seller_name"`
	SellerIDNumber    *string `json:"seller_id_number"`
	SellerAddress     *string `json:"seller_address"`
	PurchasedBy       *string `json:"purchased_by"`
	TestedBy          *string `json:"tested_by"`
	SoldBy            *string `json:"sold_by"`
	ForWeb            *bool   `json:"for_web"`
	ExternalProductID *string `json:"external_product_id"`
	Warranty          *bool   `json:"warranty"`
	WarrantyEndDate   *string `json:"warranty_end_date"`
}

type StatusChangeRequest struct {
	Status string `json:"status" binding:"required,oneof=IN_STOCK SOLD RESERVED"`
	SoldBy string `json:"sold_by"`
}

type NoteRequest struct {
	Text string `json:"text" binding:"required"`
}

type NoteResponse struct {
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type DeviceResponse struct {
	ID                string         `json:"id"`
	OrderNumber       string         `json:"order_number"`
	Brand             string         `json:"brand"`
	Model             string         `json:"model"`
	Color             string         `json:"color"`
	StorageGB         string         `json:"storage_gb"`
	IMEI              string         `json:"imei"`
	Condition         string         `json:"condition"`
	Status            string         `json:"status"`
	PurchasePrice     string         `json:"purchase_price"`
	AdditionalCost    string         `json:"additional_cost"`
	ActualSalePrice   string         `json:"actual_sale_price"`
	MarginAmount      string         `json:"margin_amount"`
	MarginPercent     string         `json:"margin_percent"`
	PurchaseDate      string         `json:"purchase_date"`
	SellerName        string         `json:"seller_name"`
	SellerIDNumber    string         `json:"seller_id_number"`
	SellerAddress     string         `json:"seller_address"`
	PurchasedBy       string         `json:"purchased_by"`
	TestedBy          string         `json:"tested_by"`
	SoldBy            string         `json:"sold_by"`
	ForWeb            bool           `json:"for_web"`
	ExternalProductID string         `json:"external_product_id"`
	Warranty          bool           `json:"warranty"`
	WarrantyEndDate   string         `json:"warranty_end_date"`
	Notes             []NoteResponse `json:"notes"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
}

// SyncOutcome reports the side-effect stock sync fired by a qualifying
// status transition. A sync failure never rolls back the transition.
type SyncOutcome struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

type StatusChangeResponse struct {
	Device DeviceResponse `json:"device"`
	Sync   *SyncOutcome   `json:"sync,omitempty"`
}

// --- Interface ---

type DeviceService interface {
	ListDevices(ctx context.Context, filter DeviceFilter, sortKey, sortDir string) ([]DeviceResponse, int, error)
	GetDevice(ctx context.Context, id string) (*DeviceResponse, error)
	CreateDevice(ctx context.Context, req CreateDeviceRequest) (*DeviceResponse, error)
	CreateWebDevice(ctx context.Context, req CreateWebDeviceRequest) (*DeviceResponse, error)
	UpdateDevice(ctx context.Context, id string, req UpdateDeviceRequest) (*DeviceResponse, error)
	DeleteDevice(ctx context.Context, id string) error
	AddNote(ctx context.Context, id string, req NoteRequest) (*DeviceResponse, error)
	ChangeStatus(ctx context.Context, id string, req StatusChangeRequest) (*StatusChangeResponse, error)
}

type deviceService struct {
	devices   repository.DeviceRepository
	sequences repository.SequenceRepository
	txManager repository.TransactionManager
	sync      StockSyncTrigger
	notifier  ChangeNotifier
}

func NewDeviceService(
	devices repository.DeviceRepository,
	sequences repository.SequenceRepository,
	txManager repository.TransactionManager,
	sync StockSyncTrigger,
	notifier ChangeNotifier,
) DeviceService {
	return &deviceService{
		devices:   devices,
		sequences: sequences,
		txManager: txManager,
		sync:      sync,
		notifier:  notifier,
	}
}

// --- Helpers shared with the template service ---

// formatOrderNumber renders an issued sequence number as OTK-NNNNNN.
func formatOrderNumber(n int64) string {
	return fmt.Sprintf("OTK-%06d", n)
}

// createWithOrderNumber issues the next order number and persists the device
// in one transaction, so a failed insert never burns a sequence value.
func createWithOrderNumber(
	ctx context.Context,
	txManager repository.TransactionManager,
	sequences repository.SequenceRepository,
	devices repository.DeviceRepository,
	device *model.Device,
) error {
	return txManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := sequences.Next(txCtx)
		if err != nil {
			return fmt.Errorf("failed to issue order number: %w", err)
		}
		device.OrderNumber = formatOrderNumber(n)
		if err := devices.Create(txCtx, device); err != nil {
			return fmt.Errorf("failed to create device: %w", err)
		}
		return nil
	})
}

// parsePrice accepts a decimal string, treating empty as zero. Negative
// amounts are rejected.
func parsePrice(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %q", field, value)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", field)
	}
	return d, nil
}

// computeMargins derives the margin amount and percent from the three price
// components. Both are zero unless the sale price exceeds total cost and the
// purchase price is positive.
func computeMargins(purchasePrice, additionalCost, actualSalePrice decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	totalCost := purchasePrice.Add(additionalCost)
	if !purchasePrice.IsPositive() || !actualSalePrice.GreaterThan(totalCost) {
		return decimal.Zero, decimal.Zero
	}
	margin := actualSalePrice.Sub(totalCost)
	percent := margin.Mul(decimal.NewFromInt(100)).Div(totalCost)
	return margin.Round(2), percent.Round(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func mapDeviceToResponse(d *model.Device) DeviceResponse {
	notes := make([]NoteResponse, 0, len(d.Notes))
	for _, n := range d.Notes {
		notes = append(notes, NoteResponse{
			Text:      n.Text,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}

	warrantyEnd := ""
	if d.WarrantyEndDate != nil {
		warrantyEnd = d.WarrantyEndDate.Format(dateLayout)
	}

	return DeviceResponse{
		ID:                d.ID.String(),
		OrderNumber:       d.OrderNumber,
		Brand:             d.Brand,
		Model:             d.Model,
		Color:             d.Color,
		StorageGB:         d.StorageGB,
		IMEI:              d.IMEI,
		Condition:         d.Condition,
		Status:            d.Status,
		PurchasePrice:     d.PurchasePrice.StringFixed(2),
		AdditionalCost:    d.AdditionalCost.StringFixed(2),
		ActualSalePrice:   d.ActualSalePrice.StringFixed(2),
		MarginAmount:      d.MarginAmount.StringFixed(2),
		MarginPercent:     d.MarginPercent.StringFixed(2),
		PurchaseDate:      formatDate(d.PurchaseDate),
		SellerName:        d.SellerName,
		SellerIDNumber:    d.SellerIDNumber,
		SellerAddress:     d.SellerAddress,
		PurchasedBy:       d.PurchasedBy,
		TestedBy:          d.TestedBy,
		SoldBy:            d.SoldBy,
		ForWeb:            d.ForWeb,
		ExternalProductID: d.ExternalProductID,
		Warranty:          d.Warranty,
		WarrantyEndDate:   warrantyEnd,
		Notes:             notes,
		CreatedAt:         d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         d.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *deviceService) notify() {
	if s.notifier != nil {
		s.notifier.NotifyChanged("devices")
	}
}

// --- Implementation ---

func (s *deviceService) ListDevices(ctx context.Context, filter DeviceFilter, sortKey, sortDir string) ([]DeviceResponse, int, error) {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := ApplyFilter(devices, filter)
	SortDevices(filtered, sortKey, sortDir)

	res := make([]DeviceResponse, 0, len(filtered))
	for i := range filtered {
		res = append(res, mapDeviceToResponse(&filtered[i]))
	}
	return res, len(res), nil
}

func (s *deviceService) GetDevice(ctx context.Context, id string) (*DeviceResponse, error) {
	device, err := s.findDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	res := mapDeviceToResponse(device)
	return &res, nil
}

func (s *deviceService) CreateDevice(ctx context.Context, req CreateDeviceRequest) (*DeviceResponse, error) {
	purchasePrice, err := parsePrice("purchase price", req.PurchasePrice)
	if err != nil {
		return nil, err
	}

	condition := req.Condition
	if condition == "" {
		condition = model.ConditionNew
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != "" {
		purchaseDate, err = time.Parse(dateLayout, req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase date: %q", req.PurchaseDate)
		}
	}

	var warrantyEnd *time.Time
	if req.Warranty && req.WarrantyEndDate != "" {
		t, err := time.Parse(dateLayout, req.WarrantyEndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid warranty end date: %q", req.WarrantyEndDate)
		}
		warrantyEnd = &t
	}

	device := &model.Device{
		Brand:             req.Brand,
		Model:             req.Model,
		Color:             req.Color,
		StorageGB:         req.StorageGB,
		IMEI:              req.IMEI,
		Condition:         condition,
		Status:            model.StatusInStock,
		PurchasePrice:     purchasePrice,
		AdditionalCost:    decimal.Zero,
		ActualSalePrice:   decimal.Zero,
		MarginAmount:      decimal.Zero,
		MarginPercent:     decimal.Zero,
		PurchaseDate:      purchaseDate,
		SellerName:        req.SellerName,
		SellerIDNumber:    req.SellerIDNumber,
		SellerAddress:     req.SellerAddress,
		PurchasedBy:       req.PurchasedBy,
		TestedBy:          req.TestedBy,
		ForWeb:            req.ForWeb,
		ExternalProductID: req.ExternalProductID,
		Warranty:          req.Warranty,
		WarrantyEndDate:   warrantyEnd,
		Notes:             []model.Note{},
	}

	if err := createWithOrderNumber(ctx, s.txManager, s.sequences, s.devices, device); err != nil {
		return nil, err
	}

	s.notify()
	res := mapDeviceToResponse(device)
	return &res, nil
}

func (s *deviceService) CreateWebDevice(ctx context.Context, req CreateWebDeviceRequest) (*DeviceResponse, error) {
	purchasePrice, err := parsePrice("purchase price", req.PurchasePrice)
	if err != nil {
		return nil, err
	}

	condition := req.Condition
	if condition == "" {
		condition = model.ConditionNew
	}

	forWeb := true
	if req.ForWeb != nil {
		forWeb = *req.ForWeb
	}

	device := &model.Device{
		Brand:             req.Brand,
		Model:             req.Model,
		Color:             req.Color,
		StorageGB:         req.StorageGB,
		IMEI:              req.IMEI,
		Condition:         condition,
		Status:            model.StatusInStock,
		PurchasePrice:     purchasePrice,
		AdditionalCost:    decimal.Zero,
		ActualSalePrice:   decimal.Zero,
		MarginAmount:      decimal.Zero,
		MarginPercent:     decimal.Zero,
		PurchaseDate:      time.Now(),
		SellerName:        "Web Izvor",
		SellerIDNumber:    "-",
		ForWeb:            forWeb,
		ExternalProductID: req.ExternalProductID,
		Notes:             []model.Note{},
	}

	if err := createWithOrderNumber(ctx, s.txManager, s.sequences, s.devices, device); err != nil {
		return nil, err
	}

	s.notify()
	res := mapDeviceToResponse(device)
	return &res, nil
}

func (s *deviceService) UpdateDevice(ctx context.Context, id string, req UpdateDeviceRequest) (*DeviceResponse, error) {
	device, err := s.findDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Brand != nil {
		device.Brand = *req.Brand
	}
	if req.Model != nil {
		device.Model = *req.Model
	}
	if req.Color != nil {
		device.Color = *req.Color
	}
	if req.StorageGB != nil {
		device.StorageGB = *req.StorageGB
	}
	if req.IMEI != nil {
		device.IMEI = *req.IMEI
	}
	if req.Condition != nil {
		if !model.ValidCondition(*req.Condition) {
			return nil, fmt.Errorf("invalid condition: %q", *req.Condition)
		}
		device.Condition = *req.Condition
	}
	if req.PurchaseDate != nil {
		t, err := time.Parse(dateLayout, *req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase date: %q", *req.PurchaseDate)
		}
		device.PurchaseDate = t
	}
	if req.PurchasePrice != nil {
		device.PurchasePrice, err = parsePrice("purchase price", *req.PurchasePrice)
		if err != nil {
			return nil, err
		}
	}
	if req.AdditionalCost != nil {
		device.AdditionalCost, err = parsePrice("additional cost", *req.AdditionalCost)
		if err != nil {
			return nil, err
		}
	}
	if req.ActualSalePrice != nil {
		device.ActualSalePrice, err = parsePrice("actual sale price", *req.ActualSalePrice)
		if err != nil {
			return nil, err
		}
	}
	if req.SellerName != nil {
		device.SellerName = *req.SellerName
	}
	if req.SellerIDNumber != nil {
		device.SellerIDNumber = *req.SellerIDNumber
	}
	if req.SellerAddress != nil {
		device.SellerAddress = *req.SellerAddress
	}
	if req.PurchasedBy != nil {
		device.PurchasedBy = *req.PurchasedBy
	}
	if req.TestedBy != nil {
		device.TestedBy = *req.TestedBy
	}
	if req.SoldBy != nil {
		device.SoldBy = *req.SoldBy
	}
	if req.ForWeb != nil {
		device.ForWeb = *req.ForWeb
	}
	if req.ExternalProductID != nil {
		device.ExternalProductID = *req.ExternalProductID
	}
	if req.Warranty != nil {
		device.Warranty = *req.Warranty
	}
	if req.WarrantyEndDate != nil {
		if *req.WarrantyEndDate == "" {
			device.WarrantyEndDate = nil
		} else {
			t, err := time.Parse(dateLayout, *req.WarrantyEndDate)
			if err != nil {
				return nil, fmt.Errorf("invalid warranty end date: %q", *req.WarrantyEndDate)
			}
			device.WarrantyEndDate = &t
		}
	}

	if device.Status == model.StatusSold && !device.ActualSalePrice.IsPositive() {
		return nil, errors.New("a sold device must keep an actual sale price greater than zero")
	}

	device.MarginAmount, device.MarginPercent = computeMargins(device.PurchasePrice, device.AdditionalCost, device.ActualSalePrice)

	if err := s.devices.Update(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}

	s.notify()
	res := mapDeviceToResponse(device)
	return &res, nil
}

func (s *deviceService) DeleteDevice(ctx context.Context, id string) error {
	device, err := s.findDevice(ctx, id)
	if err != nil {
		return err
	}

	if err := s.devices.Delete(ctx, device.ID); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	s.notify()
	return nil
}

func (s *deviceService) AddNote(ctx context.Context, id string, req NoteRequest) (*DeviceResponse, error) {
	device, err := s.findDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	device.Notes = append(device.Notes, model.Note{Text: req.Text, CreatedAt: time.Now()})
	if err := s.devices.Update(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to append note: %w", err)
	}

	s.notify()
	res := mapDeviceToResponse(device)
	return &res, nil
}

func (s *deviceService) ChangeStatus(ctx context.Context, id string, req StatusChangeRequest) (*StatusChangeResponse, error) {
	device, err := s.findDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := device.Status

	if req.Status == model.StatusSold && !device.ActualSalePrice.IsPositive() {
		return nil, errors.New("cannot mark device as sold: actual sale price must be greater than zero")
	}

	fields := map[string]interface{}{"status": req.Status}
	if req.Status == model.StatusSold {
		// soldBy is not mandatory for a sale; an existing assignment is kept
		// unless the request replaces it.
		if req.SoldBy != "" {
			fields["sold_by"] = req.SoldBy
		}
	} else {
		fields["sold_by"] = ""
	}
	if req.Status == model.StatusInStock && (previous == model.StatusSold || previous == model.StatusReserved) {
		fields["actual_sale_price"] = decimal.Zero
		fields["margin_amount"] = decimal.Zero
		fields["margin_percent"] = decimal.Zero
	}

	if err := s.devices.UpdateFields(ctx, device.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	device, err = s.devices.FindByID(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload device: %w", err)
	}

	s.notify()

	res := &StatusChangeResponse{Device: mapDeviceToResponse(device)}

	if s.sync != nil && previous == model.StatusInStock &&
		(req.Status == model.StatusSold || req.Status == model.StatusReserved) {
		outcome := &SyncOutcome{Triggered: true}
		message, syncErr := s.sync.Sync(ctx)
		if syncErr != nil {
			outcome.Error = syncErr.Error()
		} else {
			outcome.Message = message
		}
		res.Sync = outcome
	}

	return res, nil
}

func (s *deviceService) findDevice(ctx context.Context, id string) (*model.Device, error) {
	deviceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid device id: %w", err)
	}

	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("device not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return device, nil
}
