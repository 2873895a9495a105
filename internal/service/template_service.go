package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"otkup-backend/internal/model"
	"otkup-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// A template groups devices sharing brand, model, color and storage, and
// carries a draft of the values the next purchase of that configuration would
// use. Drafts live in memory only; committing one persists a real device.

type TemplateRow struct {
	Key       string `json:"key"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Color     string `json:"color"`
	StorageGB string `json:"storage_gb"`

	Condition         string `json:"condition"`
	PurchasePrice     string `json:"purchase_price"`
	ActualSalePrice   string `json:"actual_sale_price"`
	AdditionalCost    string `json:"additional_cost"`
	ExternalProductID string `json:"external_product_id"`
	ForWeb            bool   `json:"for_web"`
	IMEI              string `json:"imei"`
	SoldBy            string `json:"sold_by"`
	Notes             string `json:"notes"`

	DeviceCount int `json:"device_count"`
}

type DraftUpdateRequest struct {
	Key   string `json:"key" binding:"required"`
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type CommitTemplateRequest struct {
	Key string `json:"key" binding:"required"`
}

type TemplateService interface {
	ListTemplates(ctx context.Context, search string) ([]TemplateRow, error)
	SetDraftField(ctx context.Context, req DraftUpdateRequest) (*TemplateRow, error)
	CommitTemplate(ctx context.Context, key string) (*DeviceResponse, error)
}

type templateDraft struct {
	condition         string
	purchasePrice     decimal.Decimal
	actualSalePrice   decimal.Decimal
	additionalCost    decimal.Decimal
	externalProductID string
	forWeb            bool
	imei              string
	soldBy            string
	notes             string

	// userSet tracks which fields the operator touched; refreshes never
	// overwrite a touched field.
	userSet map[string]bool
}

type templateGroup struct {
	brand, model, color, storageGB string
	devices                        []model.Device
}

type templateService struct {
	devices   repository.DeviceRepository
	sequences repository.SequenceRepository
	txManager repository.TransactionManager
	notifier  ChangeNotifier

	mu     sync.Mutex
	drafts map[string]*templateDraft
}

func NewTemplateService(
	devices repository.DeviceRepository,
	sequences repository.SequenceRepository,
	txManager repository.TransactionManager,
	notifier ChangeNotifier,
) TemplateService {
	return &templateService{
		devices:   devices,
		sequences: sequences,
		txManager: txManager,
		notifier:  notifier,
		drafts:    map[string]*templateDraft{},
	}
}

func templateKey(brand, model, color, storageGB string) string {
	return strings.Join([]string{brand, model, color, storageGB}, "|")
}

// groupDevices buckets the snapshot by configuration, keeping first-seen
// order of both groups and their member devices.
func groupDevices(devices []model.Device) ([]string, map[string]*templateGroup) {
	order := make([]string, 0)
	groups := map[string]*templateGroup{}
	for i := range devices {
		d := &devices[i]
		key := templateKey(d.Brand, d.Model, d.Color, d.StorageGB)
		g, ok := groups[key]
		if !ok {
			g = &templateGroup{brand: d.Brand, model: d.Model, color: d.Color, storageGB: d.StorageGB}
			groups[key] = g
			order = append(order, key)
		}
		g.devices = append(g.devices, *d)
	}
	return order, groups
}

// pickDefaultSource chooses the device whose listing data seeds a fresh
// draft. Preference order: web-listed with a storefront id, any with a
// storefront id, new condition, used condition.
func pickDefaultSource(devices []model.Device) *model.Device {
	for i := range devices {
		if devices[i].ForWeb && devices[i].ExternalProductID != "" {
			return &devices[i]
		}
	}
	for i := range devices {
		if devices[i].ExternalProductID != "" {
			return &devices[i]
		}
	}
	for i := range devices {
		if devices[i].Condition == model.ConditionNew {
			return &devices[i]
		}
	}
	for i := range devices {
		if devices[i].Condition == model.ConditionUsed {
			return &devices[i]
		}
	}
	return nil
}

// pickSourceForCondition is the condition-restricted variant used when the
// operator switches a draft's condition: only devices of that condition may
// contribute listing data.
func pickSourceForCondition(devices []model.Device, condition string) *model.Device {
	for i := range devices {
		if devices[i].Condition == condition && devices[i].ForWeb && devices[i].ExternalProductID != "" {
			return &devices[i]
		}
	}
	for i := range devices {
		if devices[i].Condition == condition && devices[i].ExternalProductID != "" {
			return &devices[i]
		}
	}
	for i := range devices {
		if devices[i].Condition == condition {
			return &devices[i]
		}
	}
	return nil
}

// firstOfCondition returns the earliest-seen device of the given condition.
// The purchase price always seeds from here, not from the precedence winner:
// the winner settles condition and listing data, the first unit of that
// condition is what the shop actually paid.
func firstOfCondition(devices []model.Device, condition string) *model.Device {
	for i := range devices {
		if devices[i].Condition == condition {
			return &devices[i]
		}
	}
	return nil
}

func newDraftFromGroup(g *templateGroup) *templateDraft {
	d := &templateDraft{
		condition: model.ConditionNew,
		userSet:   map[string]bool{},
	}
	if src := pickDefaultSource(g.devices); src != nil {
		d.condition = src.Condition
		d.externalProductID = src.ExternalProductID
		d.forWeb = src.ForWeb
		if priceSrc := firstOfCondition(g.devices, src.Condition); priceSrc != nil {
			d.purchasePrice = priceSrc.PurchasePrice
		}
	}
	return d
}

// refreshLocked rebuilds the draft map from the current snapshot. New groups
// get freshly seeded drafts; existing drafts only have gaps filled (a zero
// purchase price or an empty storefront id the operator never touched), and
// drafts for vanished groups are pruned. Caller holds the mutex.
func (s *templateService) refreshLocked(order []string, groups map[string]*templateGroup) {
	for key := range s.drafts {
		if _, ok := groups[key]; !ok {
			delete(s.drafts, key)
		}
	}

	for _, key := range order {
		g := groups[key]
		draft, ok := s.drafts[key]
		if !ok {
			s.drafts[key] = newDraftFromGroup(g)
			continue
		}
		src := pickDefaultSource(g.devices)
		if src == nil {
			continue
		}
		if draft.purchasePrice.IsZero() && !draft.userSet["purchase_price"] {
			if priceSrc := firstOfCondition(g.devices, src.Condition); priceSrc != nil {
				draft.purchasePrice = priceSrc.PurchasePrice
			}
		}
		if draft.externalProductID == "" && !draft.userSet["external_product_id"] {
			draft.externalProductID = src.ExternalProductID
		}
	}
}

func (s *templateService) rowFor(key string, g *templateGroup, d *templateDraft) TemplateRow {
	return TemplateRow{
		Key:               key,
		Brand:             g.brand,
		Model:             g.model,
		Color:             g.color,
		StorageGB:         g.storageGB,
		Condition:         d.condition,
		PurchasePrice:     d.purchasePrice.StringFixed(2),
		ActualSalePrice:   d.actualSalePrice.StringFixed(2),
		AdditionalCost:    d.additionalCost.StringFixed(2),
		ExternalProductID: d.externalProductID,
		ForWeb:            d.forWeb,
		IMEI:              d.imei,
		SoldBy:            d.soldBy,
		Notes:             d.notes,
		DeviceCount:       len(g.devices),
	}
}

func (s *templateService) ListTemplates(ctx context.Context, search string) ([]TemplateRow, error) {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	order, groups := groupDevices(devices)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(order, groups)

	rows := make([]TemplateRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if search != "" {
			label := strings.Join([]string{g.brand, g.model, g.color, g.storageGB}, " ")
			if !containsFold(label, search) {
				continue
			}
		}
		rows = append(rows, s.rowFor(key, g, s.drafts[key]))
	}
	return rows, nil
}

func (s *templateService) SetDraftField(ctx context.Context, req DraftUpdateRequest) (*TemplateRow, error) {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	order, groups := groupDevices(devices)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(order, groups)

	g, ok := groups[req.Key]
	if !ok {
		return nil, errors.New("template not found")
	}
	draft := s.drafts[req.Key]

	switch req.Field {
	case "condition":
		if !model.ValidCondition(req.Value) {
			return nil, fmt.Errorf("invalid condition: %q", req.Value)
		}
		draft.condition = req.Value
		draft.userSet["condition"] = true
		// Switching condition re-derives the listing data from devices of
		// the new condition only; no match clears it.
		draft.externalProductID = ""
		draft.purchasePrice = decimal.Zero
		draft.forWeb = false
		delete(draft.userSet, "external_product_id")
		delete(draft.userSet, "purchase_price")
		delete(draft.userSet, "for_web")
		if src := pickSourceForCondition(g.devices, req.Value); src != nil {
			draft.externalProductID = src.ExternalProductID
			draft.forWeb = src.ForWeb
		}
		if priceSrc := firstOfCondition(g.devices, req.Value); priceSrc != nil {
			draft.purchasePrice = priceSrc.PurchasePrice
		}
	case "purchase_price":
		draft.purchasePrice, err = parsePrice("purchase price", req.Value)
		if err != nil {
			return nil, err
		}
		draft.userSet["purchase_price"] = true
	case "actual_sale_price":
		draft.actualSalePrice, err = parsePrice("actual sale price", req.Value)
		if err != nil {
			return nil, err
		}
		draft.userSet["actual_sale_price"] = true
	case "additional_cost":
		draft.additionalCost, err = parsePrice("additional cost", req.Value)
		if err != nil {
			return nil, err
		}
		draft.userSet["additional_cost"] = true
	case "external_product_id":
		draft.externalProductID = req.Value
		draft.userSet["external_product_id"] = true
	case "for_web":
		draft.forWeb = req.Value == "true"
		draft.userSet["for_web"] = true
	case "imei":
		draft.imei = req.Value
		draft.userSet["imei"] = true
	case "sold_by":
		draft.soldBy = req.Value
		draft.userSet["sold_by"] = true
	case "notes":
		draft.notes = req.Value
		draft.userSet["notes"] = true
	default:
		return nil, fmt.Errorf("unknown draft field: %q", req.Field)
	}

	row := s.rowFor(req.Key, g, draft)
	return &row, nil
}

func (s *templateService) CommitTemplate(ctx context.Context, key string) (*DeviceResponse, error) {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	order, groups := groupDevices(devices)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(order, groups)

	g, ok := groups[key]
	if !ok {
		return nil, errors.New("template not found")
	}
	draft := s.drafts[key]

	if strings.TrimSpace(draft.imei) == "" {
		return nil, errors.New("IMEI is required before committing a template")
	}

	device := &model.Device{
		Brand:             g.brand,
		Model:             g.model,
		Color:             g.color,
		StorageGB:         g.storageGB,
		IMEI:              strings.TrimSpace(draft.imei),
		Condition:         draft.condition,
		Status:            model.StatusInStock,
		PurchasePrice:     draft.purchasePrice,
		AdditionalCost:    draft.additionalCost,
		ActualSalePrice:   draft.actualSalePrice,
		PurchaseDate:      time.Now(),
		ForWeb:            draft.forWeb,
		ExternalProductID: draft.externalProductID,
		Notes:             []model.Note{},
	}
	if draft.notes != "" {
		device.Notes = append(device.Notes, model.Note{Text: draft.notes, CreatedAt: time.Now()})
	}
	// A drafted sale price is stored for the upcoming sale, but every commit
	// enters stock; marking the unit sold is a separate status transition.
	device.MarginAmount, device.MarginPercent = computeMargins(device.PurchasePrice, device.AdditionalCost, device.ActualSalePrice)

	if err := createWithOrderNumber(ctx, s.txManager, s.sequences, s.devices, device); err != nil {
		return nil, err
	}

	// Reset the draft for the next entry: per-device fields clear, listing
	// data re-seeds preferring new condition.
	reset := &templateDraft{condition: model.ConditionNew, userSet: map[string]bool{}}
	src := pickSourceForCondition(g.devices, model.ConditionNew)
	if src == nil {
		src = pickSourceForCondition(g.devices, model.ConditionUsed)
	}
	if src != nil {
		reset.condition = src.Condition
		reset.externalProductID = src.ExternalProductID
		reset.forWeb = src.ForWeb
		if priceSrc := firstOfCondition(g.devices, src.Condition); priceSrc != nil {
			reset.purchasePrice = priceSrc.PurchasePrice
		}
	}
	s.drafts[key] = reset

	if s.notifier != nil {
		s.notifier.NotifyChanged("devices")
	}

	res := mapDeviceToResponse(device)
	return &res, nil
}
