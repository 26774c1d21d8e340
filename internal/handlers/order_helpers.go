package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// totalTolerance bounds the difference allowed between the client-declared
// total and the server-side recomputation.
const totalTolerance = 0.001

type orderNotFoundError struct {
	OrderID primitive.ObjectID
}

func (e orderNotFoundError) Error() string {
	return "order not found"
}

type alreadyCanceledError struct {
	OrderID primitive.ObjectID
}

func (e alreadyCanceledError) Error() string {
	return "order already canceled"
}

type outOfStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type totalMismatchError struct {
	Declared float64
	Expected float64
}

func (e totalMismatchError) Error() string {
	return fmt.Sprintf("total mismatch: declared %.3f, expected %.3f", e.Declared, e.Expected)
}

func validateCustomer(c models.OrderCustomer) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return errors.New("name is required")
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			return errors.New("name must not contain digits")
		}
	}

	phone := strings.TrimSpace(c.Phone)
	if len(phone) != 8 {
		return errors.New("phone must be exactly 8 digits")
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return errors.New("phone must be exactly 8 digits")
		}
	}

	if strings.TrimSpace(c.Area) == "" ||
		strings.TrimSpace(c.Block) == "" ||
		strings.TrimSpace(c.Street) == "" ||
		strings.TrimSpace(c.House) == "" {
		return errors.New("all address fields are required")
	}

	return nil
}

func validateLineItems(items []models.LineItem) error {
	if len(items) == 0 {
		return errors.New("at least one item is required")
	}

	for i, item := range items {
		switch item.Kind {
		case models.LineItemProduct:
			if item.ProductLine == nil || item.BundleLine != nil {
				return fmt.Errorf("item %d: malformed product line", i)
			}
			if item.ProductLine.Quantity <= 0 {
				return fmt.Errorf("item %d: quantity must be greater than zero", i)
			}
		case models.LineItemBundle:
			if item.BundleLine == nil || item.ProductLine != nil {
				return fmt.Errorf("item %d: malformed bundle line", i)
			}
			if item.BundleLine.Quantity <= 0 {
				return fmt.Errorf("item %d: quantity must be greater than zero", i)
			}
			if len(item.BundleLine.Items) == 0 {
				return fmt.Errorf("item %d: bundle has no items", i)
			}
			for j, bi := range item.BundleLine.Items {
				if bi.Quantity <= 0 {
					return fmt.Errorf("item %d: bundle item %d quantity must be greater than zero", i, j)
				}
			}
		default:
			return fmt.Errorf("item %d: unknown line item kind %q", i, item.Kind)
		}
	}

	return nil
}

// itemsSubtotal sums line prices from the embedded snapshots. Bundle lines
// count every resolved product at its stored quantity times the bundle
// multiplier.
func itemsSubtotal(items []models.LineItem) float64 {
	subtotal := 0.0
	for _, item := range items {
		switch item.Kind {
		case models.LineItemProduct:
			subtotal += item.ProductLine.EffectivePrice() * float64(item.ProductLine.Quantity)
		case models.LineItemBundle:
			bundleTotal := 0.0
			for _, bi := range item.BundleLine.Items {
				bundleTotal += bi.Product.Price * float64(bi.Quantity)
			}
			subtotal += bundleTotal * float64(item.BundleLine.Quantity)
		}
	}
	return subtotal
}

// reconcileTotal recomputes the order total from the embedded line prices and
// rejects a declared total that does not match. The declared value is what
// gets persisted once it passes.
func reconcileTotal(declared, discount, shipping float64, items []models.LineItem) error {
	expected := itemsSubtotal(items) - discount + shipping
	if math.Abs(declared-expected) > totalTolerance {
		return totalMismatchError{Declared: declared, Expected: expected}
	}
	return nil
}

// inventoryDelta is the stock movement one order causes for one stock
// counter. Variety names the sub-SKU counter when the line selected one;
// empty means the parent product's own quantity.
type inventoryDelta struct {
	ProductID primitive.ObjectID
	LegacyID  *int64
	Variety   string
	Quantity  int
}

func deltaKey(id primitive.ObjectID, legacyID *int64, variety string) string {
	key := ""
	switch {
	case !id.IsZero():
		key = "oid:" + id.Hex()
	case legacyID != nil:
		key = "lid:" + strconv.FormatInt(*legacyID, 10)
	default:
		return ""
	}
	if variety != "" {
		key += "|var:" + variety
	}
	return key
}

// inventoryDeltas aggregates consumed units per stock counter across both
// line shapes. The same product ordered with and without a variety yields
// separate deltas. Products with no usable identifier are skipped; they can
// be neither decremented nor restored.
func inventoryDeltas(items []models.LineItem) []inventoryDelta {
	keys := make([]string, 0)
	byKey := make(map[string]*inventoryDelta)

	add := func(p models.Product, variety string, qty int) {
		key := deltaKey(p.ID, p.LegacyID, variety)
		if key == "" || qty <= 0 {
			return
		}
		if existing, ok := byKey[key]; ok {
			existing.Quantity += qty
			return
		}
		byKey[key] = &inventoryDelta{ProductID: p.ID, LegacyID: p.LegacyID, Variety: variety, Quantity: qty}
		keys = append(keys, key)
	}

	for _, item := range items {
		switch item.Kind {
		case models.LineItemProduct:
			variety := ""
			if item.ProductLine.Variety != nil {
				variety = item.ProductLine.Variety.Name
			}
			add(item.ProductLine.Product, variety, item.ProductLine.Quantity)
		case models.LineItemBundle:
			for _, bi := range item.BundleLine.Items {
				add(bi.Product, "", bi.Quantity*item.BundleLine.Quantity)
			}
		}
	}

	deltas := make([]inventoryDelta, 0, len(keys))
	for _, key := range keys {
		deltas = append(deltas, *byKey[key])
	}
	return deltas
}

// trackedStock returns the counter a delta targets: the selected variety's
// quantity when one was ordered, the parent product's otherwise. Nil means
// nothing to guard, either a missing product or variety, or unlimited stock.
func trackedStock(p *models.Product, d inventoryDelta) *int {
	if p == nil {
		return nil
	}
	if d.Variety != "" {
		v := p.FindVariety(d.Variety)
		if v == nil {
			return nil
		}
		return v.Quantity
	}
	return p.Quantity
}

func stockName(p *models.Product, d inventoryDelta) string {
	if d.Variety != "" {
		return p.Name + " (" + d.Variety + ")"
	}
	return p.Name
}

// ensureCancelable rejects repeat cancellations so the inventory restore can
// never run twice for one order.
func ensureCancelable(order models.Order) error {
	if order.Status == models.OrderStatusCanceled {
		return alreadyCanceledError{OrderID: order.ID}
	}
	return nil
}
