// Package cart holds the customer's pending order: its lines, the table it
// is bound to, and the checkout that turns it into an order.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonborges/menu4you/pkg/api"
	"github.com/jonborges/menu4you/pkg/models"
)

type State int

const (
	Empty State = iota
	HasItems
	CheckingOut
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case HasItems:
		return "has_items"
	case CheckingOut:
		return "checking_out"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyCart = &api.DomainError{Code: api.CodeEmptyCart, Message: "cart is empty"}

	ErrCheckoutInProgress = &api.DomainError{Code: api.CodeCheckoutInProgress, Message: "checkout already in progress"}

	ErrInvalidTable = &api.DomainError{Code: api.CodeInvalidInput, Message: "table number must be at least 1"}
)

// OrderSubmitter is satisfied by *api.Client.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req models.OrderRequest, idempotencyKey string) (*models.Order, error)
}

type Cart struct {
	mu          sync.Mutex
	items       []models.CartItem
	table       *int
	restaurant  *int64
	checkingOut bool
	// lineGen marks when each line was created, so a line removed and added
	// again while an order is in flight is not mistaken for the submitted one.
	lineGen map[int64]uint64
	nextGen uint64
	// pendingKey is reused by checkout attempts that send the same request
	// (pendingReq). Any mutation resets it.
	pendingKey string
	pendingReq []byte

	checkoutMu sync.Mutex
	orders     OrderSubmitter
	tables     TableStore
	newKey     func() string
}

func New(orders OrderSubmitter, tables TableStore) *Cart {
	return &Cart{orders: orders, tables: tables, newKey: uuid.NewString, lineGen: make(map[int64]uint64)}
}

// Restore reloads the table binding saved by BindTable.
func (c *Cart) Restore(ctx context.Context) error {
	b, err := c.tables.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetKeyLocked()
	if b == nil {
		c.table, c.restaurant = nil, nil
		return nil
	}
	table := b.TableNumber
	c.table = &table
	c.restaurant = b.RestaurantID
	return nil
}

// AddItem merges item into an existing line with the same ItemID by summing
// quantities, or appends a new line.
func (c *Cart) AddItem(item models.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for i := range c.items {
		if c.items[i].ItemID == item.ItemID {
			c.items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		c.items = append(c.items, item)
		c.nextGen++
		c.lineGen[item.ItemID] = c.nextGen
	}
	c.resetKeyLocked()
}

// UpdateQuantity replaces the quantity of a line. Callers clamp qty to at
// least 1; the cart stores whatever it is given.
func (c *Cart) UpdateQuantity(itemID int64, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ItemID == itemID {
			c.items[i].Quantity = qty
			c.resetKeyLocked()
			return
		}
	}
}

func (c *Cart) RemoveItem(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ItemID == itemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			delete(c.lineGen, itemID)
			c.resetKeyLocked()
			return
		}
	}
}

// Clear empties the lines. The table binding is kept.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	clear(c.lineGen)
	c.resetKeyLocked()
}

func (c *Cart) resetKeyLocked() {
	c.pendingKey = ""
	c.pendingReq = nil
}

func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem(nil), c.items...)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.items)
}

func totalOf(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Cart) stateLocked() State {
	switch {
	case c.checkingOut:
		return CheckingOut
	case len(c.items) == 0:
		return Empty
	default:
		return HasItems
	}
}

func (c *Cart) TableNumber() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableNumberLocked()
}

func (c *Cart) tableNumberLocked() *int {
	if c.table == nil {
		return nil
	}
	n := *c.table
	return &n
}

// SetTableNumber rebinds the cart in memory only. Pass nil to unbind.
func (c *Cart) SetTableNumber(n *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetKeyLocked()
	if n == nil {
		c.table = nil
		return
	}
	v := *n
	c.table = &v
}

// BindTable is called when a table-scoped menu is opened: the binding is
// saved durably and then applied in memory.
func (c *Cart) BindTable(ctx context.Context, restaurantID int64, table int) error {
	if table < 1 {
		return ErrInvalidTable
	}
	if err := c.tables.Save(ctx, TableBinding{TableNumber: table, RestaurantID: &restaurantID}); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = &table
	c.restaurant = &restaurantID
	c.resetKeyLocked()
	return nil
}

type Snapshot struct {
	Items        []models.CartItem `json:"items"`
	TableNumber  *int              `json:"tableNumber"`
	RestaurantID *int64            `json:"restaurantId,omitempty"`
	Total        decimal.Decimal   `json:"total"`
	ItemCount    int               `json:"itemCount"`
	State        string            `json:"state"`
}

// Snapshot reads every field under one lock.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Items:        append([]models.CartItem{}, c.items...),
		RestaurantID: c.restaurant,
		Total:        totalOf(c.items),
		TableNumber:  c.tableNumberLocked(),
		State:        c.stateLocked().String(),
	}
	for _, it := range c.items {
		s.ItemCount += it.Quantity
	}
	return s
}

// Checkout submits the cart as an order for userID (nil for guests). On
// success the submitted lines, the table binding and its stored keys are
// cleared. On failure the cart is left as it was and the error is returned.
//
// The restaurant comes from the first line, or the bound table when the
// line does not carry one. Lines may still be edited while the order is in
// flight; only the quantities that were submitted are taken out, and a line
// removed and added again meanwhile is kept whole.
//
// Attempts that send the same request share one idempotency key. A change
// of lines, table, user or guest name yields a new key.
func (c *Cart) Checkout(ctx context.Context, userID *int64, guestName string) (*models.Order, error) {
	if !c.checkoutMu.TryLock() {
		return nil, ErrCheckoutInProgress
	}
	defer c.checkoutMu.Unlock()

	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}
	submitted := append([]models.CartItem(nil), c.items...)
	gens := make(map[int64]uint64, len(submitted))
	for _, it := range submitted {
		gens[it.ItemID] = c.lineGen[it.ItemID]
	}
	req := models.OrderRequest{
		UserID:       userID,
		RestaurantID: submitted[0].RestaurantID,
		TableNumber:  c.tableNumberLocked(),
		Items:        make([]models.OrderLine, 0, len(submitted)),
		GuestName:    guestName,
	}
	if req.RestaurantID == nil {
		req.RestaurantID = c.restaurant
	}
	for _, it := range submitted {
		req.Items = append(req.Items, models.OrderLine{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	if c.pendingKey == "" || !bytes.Equal(c.pendingReq, payload) {
		c.pendingKey = c.newKey()
		c.pendingReq = payload
	}
	key := c.pendingKey
	c.checkingOut = true
	c.mu.Unlock()

	order, err := c.orders.CreateOrder(ctx, req, key)

	c.mu.Lock()
	c.checkingOut = false
	if err != nil {
		c.mu.Unlock()
		log.Printf("Checkout of %d lines failed: %v", len(submitted), err)
		return nil, err
	}
	c.items = c.subtractLinesLocked(submitted, gens)
	c.table = nil
	c.restaurant = nil
	c.resetKeyLocked()
	c.mu.Unlock()

	if err := c.tables.Clear(ctx); err != nil {
		// The order exists; a stale binding is only a nuisance on the next
		// restart, so the checkout still succeeds.
		log.Printf("Warning: order %d placed but table binding not cleared: %v", order.ID, err)
	}
	log.Printf("Checked out %d lines as order %d", len(submitted), order.ID)
	return order, nil
}

// subtractLinesLocked takes the submitted quantities out of the cart. A line
// whose generation differs from the one submitted was created after the
// order was built and is kept whole.
func (c *Cart) subtractLinesLocked(submitted []models.CartItem, gens map[int64]uint64) []models.CartItem {
	sent := make(map[int64]int, len(submitted))
	for _, it := range submitted {
		sent[it.ItemID] = it.Quantity
	}
	var out []models.CartItem
	for _, it := range c.items {
		qty, wasSent := sent[it.ItemID]
		if wasSent && c.lineGen[it.ItemID] == gens[it.ItemID] {
			it.Quantity -= qty
			if it.Quantity <= 0 {
				delete(c.lineGen, it.ItemID)
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
