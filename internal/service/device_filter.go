package service

import (
	"sort"
	"strings"
	"time"

	"otkup-backend/internal/model"
)

// DeviceFilter holds the list query criteria. Text fields match as
// case-insensitive substrings; Status, Condition and ForWeb match exactly.
type DeviceFilter struct {
	IMEI      string
	Brand     string
	Model     string
	Color     string
	StorageGB string
	Status    string
	Condition string
	ForWeb    string // "", "true" or "false"

	// Inclusive purchase-date bounds, YYYY-MM-DD. An unparsable bound is
	// ignored rather than failing the whole query.
	PurchaseDateStart string
	PurchaseDateEnd   string

	// MissingStorefrontID overrides every other criterion: it selects
	// in-stock, new, web-listed devices with no storefront product id, so
	// unlinked listings can be found regardless of whatever filters the
	// caller left set.
	MissingStorefrontID bool
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesFilter(d *model.Device, f DeviceFilter) bool {
	if f.MissingStorefrontID {
		return d.Status == model.StatusInStock &&
			d.Condition == model.ConditionNew &&
			d.ForWeb &&
			d.ExternalProductID == ""
	}

	if !containsFold(d.IMEI, f.IMEI) ||
		!containsFold(d.Brand, f.Brand) ||
		!containsFold(d.Model, f.Model) ||
		!containsFold(d.Color, f.Color) ||
		!containsFold(d.StorageGB, f.StorageGB) {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.Condition != "" && d.Condition != f.Condition {
		return false
	}
	if f.ForWeb == "true" && !d.ForWeb {
		return false
	}
	if f.ForWeb == "false" && d.ForWeb {
		return false
	}

	if f.PurchaseDateStart != "" {
		if start, err := time.Parse(dateLayout, f.PurchaseDateStart); err == nil {
			if d.PurchaseDate.Before(start) {
				return false
			}
		}
	}
	if f.PurchaseDateEnd != "" {
		if end, err := time.Parse(dateLayout, f.PurchaseDateEnd); err == nil {
			// Inclusive upper bound: anything before the next midnight counts.
			if !d.PurchaseDate.Before(end.AddDate(0, 0, 1)) {
				return false
			}
		}
	}

	return true
}

// ApplyFilter returns the devices matching the filter, preserving input order.
func ApplyFilter(devices []model.Device, f DeviceFilter) []model.Device {
	out := make([]model.Device, 0, len(devices))
	for i := range devices {
		if matchesFilter(&devices[i], f) {
			out = append(out, devices[i])
		}
	}
	return out
}

// SortDevices orders the slice in place by the given key. String keys compare
// case-insensitively; an empty or unknown key leaves the input order intact.
// The sort is stable, so equal keys keep their relative order.
func SortDevices(devices []model.Device, key, direction string) {
	var less func(a, b *model.Device) bool

	strKey := func(get func(*model.Device) string) func(a, b *model.Device) bool {
		return func(a, b *model.Device) bool {
			return strings.ToLower(get(a)) < strings.ToLower(get(b))
		}
	}

	switch key {
	case "order_number":
		less = strKey(func(d *model.Device) string { return d.OrderNumber })
	case "brand":
		less = strKey(func(d *model.Device) string { return d.Brand })
	case "model":
		less = strKey(func(d *model.Device) string { return d.Model })
	case "color":
		less = strKey(func(d *model.Device) string { return d.Color })
	case "storage_gb":
		less = strKey(func(d *model.Device) string { return d.StorageGB })
	case "imei":
		less = strKey(func(d *model.Device) string { return d.IMEI })
	case "status":
		less = strKey(func(d *model.Device) string { return d.Status })
	case "condition":
		less = strKey(func(d *model.Device) string { return d.Condition })
	case "seller_name":
		less = strKey(func(d *model.Device) string { return d.SellerName })
	case "sold_by":
		less = strKey(func(d *model.Device) string { return d.SoldBy })
	case "purchase_price":
		less = func(a, b *model.Device) bool { return a.PurchasePrice.Cmp(b.PurchasePrice) < 0 }
	case "additional_cost":
		less = func(a, b *model.Device) bool { return a.AdditionalCost.Cmp(b.AdditionalCost) < 0 }
	case "actual_sale_price":
		less = func(a, b *model.Device) bool { return a.ActualSalePrice.Cmp(b.ActualSalePrice) < 0 }
	case "margin_amount":
		less = func(a, b *model.Device) bool { return a.MarginAmount.Cmp(b.MarginAmount) < 0 }
	case "margin_percent":
		less = func(a, b *model.Device) bool { return a.MarginPercent.Cmp(b.MarginPercent) < 0 }
	case "purchase_date":
		less = func(a, b *model.Device) bool { return a.PurchaseDate.Before(b.PurchaseDate) }
	case "created_at":
		less = func(a, b *model.Device) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated_at":
		less = func(a, b *model.Device) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return
	}

	if direction == "desc" {
		asc := less
		less = func(a, b *model.Device) bool { return asc(b, a) }
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return less(&devices[i], &devices[j])
	})
}
