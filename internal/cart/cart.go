// Package cart is the shopping cart state machine. Every mutation rewrites
// the whole cart under one storage key and then refreshes all registered
// count observers, so any number of on-page badges stay in sync.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookhaven/internal/catalog"
	"bookhaven/internal/localstore"
)

// StorageKey is the single durable-storage key holding the cart.
const StorageKey = "bookhaven/cart"

var ErrEmptyCart = errors.New("cart is empty")

// LineItem aggregates quantity for one book. Title and price are copied
// from the catalog at add time; later catalog changes do not touch them.
type LineItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
}

// Events publishes domain events; a nil Events disables publishing.
type Events interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

type Manager struct {
	store  localstore.Store
	events Events

	// opMu serializes load-modify-save cycles: the manager is shared
	// across concurrent requests, and an unserialized read-modify-write
	// would lose one of two interleaved mutations.
	opMu sync.Mutex

	mu        sync.Mutex
	observers []func(count int64)
}

func NewManager(store localstore.Store, events Events) *Manager {
	return &Manager{store: store, events: events}
}

// OnChange registers an observer invoked with the item count after every
// mutation. All observers see the same value for the same mutation.
func (m *Manager) OnChange(fn func(count int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Items loads the cart in insertion order. A missing key is an empty cart.
func (m *Manager) Items(ctx context.Context) ([]LineItem, error) {
	raw, err := m.store.Get(ctx, StorageKey)
	if errors.Is(err, localstore.ErrNoKey) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (m *Manager) save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := m.store.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	m.notify(countOf(items))
	return nil
}

func (m *Manager) notify(count int64) {
	m.mu.Lock()
	obs := make([]func(int64), len(m.observers))
	copy(obs, m.observers)
	m.mu.Unlock()
	for _, fn := range obs {
		fn(count)
	}
}

func countOf(items []LineItem) int64 {
	var n int64
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Add puts one unit of b in the cart, aggregating onto an existing line.
func (m *Manager) Add(ctx context.Context, b catalog.Book) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	items, err := m.Items(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range items {
		if items[i].ID == b.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, LineItem{
			ID:         b.ID,
			Title:      b.Title,
			PriceCents: b.PriceCents(),
			Quantity:   1,
		})
	}
	return m.save(ctx, items)
}

func (m *Manager) Increase(ctx context.Context, id int64) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	items, err := m.Items(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity++
			return m.save(ctx, items)
		}
	}
	return nil
}

// Decrease drops one unit; a line that would reach zero is removed.
func (m *Manager) Decrease(ctx context.Context, id int64) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	items, err := m.Items(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if items[i].Quantity > 1 {
			items[i].Quantity--
		} else {
			items = append(items[:i], items[i+1:]...)
		}
		return m.save(ctx, items)
	}
	return nil
}

func (m *Manager) Remove(ctx context.Context, id int64) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	items, err := m.Items(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return m.save(ctx, items)
		}
	}
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.save(ctx, nil)
}

func (m *Manager) Total(ctx context.Context) (Money, error) {
	items, err := m.Items(ctx)
	if err != nil {
		return Money{}, err
	}
	var total Money
	for _, it := range items {
		total = total.Add(Money{Cents: it.PriceCents}.Mul(it.Quantity))
	}
	return total, nil
}

func (m *Manager) ItemCount(ctx context.Context) (int64, error) {
	items, err := m.Items(ctx)
	if err != nil {
		return 0, err
	}
	return countOf(items), nil
}

type checkoutEvent struct {
	OrderID    string     `json:"order_id"`
	TotalCents int64      `json:"total_cents"`
	Items      []LineItem `json:"items"`
}

// Checkout confirms the purchase and clears the cart. There is no payment
// integration; the returned order id is the confirmation reference.
func (m *Manager) Checkout(ctx context.Context) (string, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	items, err := m.Items(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	var total Money
	for _, it := range items {
		total = total.Add(Money{Cents: it.PriceCents}.Mul(it.Quantity))
	}
	orderID := uuid.NewString()
	m.publish(ctx, "cart.checkout.confirmed", checkoutEvent{
		OrderID:    orderID,
		TotalCents: total.Cents,
		Items:      items,
	})

	if err := m.save(ctx, nil); err != nil {
		return "", err
	}
	return orderID, nil
}

func (m *Manager) publish(ctx context.Context, key string, ev checkoutEvent) {
	if m.events == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := m.events.Publish(ctx, key, body); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("event publish failed")
	}
}
