package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

const (
	CartKey  = "restaurant_cart"
	TableKey = "tableNumber"
)

// Store is one session's cart backed by durable Storage. Every mutation
// is written through before it becomes visible.
type Store struct {
	mu        *sync.Mutex
	storage   Storage
	namespace string
	cart      Cart
}

// Open hydrates the cart saved under namespace. Missing or unreadable data
// starts an empty cart.
func Open(ctx context.Context, storage Storage, namespace string) (*Store, error) {
	return openLocked(ctx, storage, namespace, &sync.Mutex{})
}

// openLocked is Open with a mutex shared by every Store of the same namespace.
func openLocked(ctx context.Context, storage Storage, namespace string, mu *sync.Mutex) (*Store, error) {
	s := &Store{mu: mu, storage: storage, namespace: namespace}

	mu.Lock()
	defer mu.Unlock()
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.cart = c
	return s, nil
}

func (s *Store) load(ctx context.Context) (Cart, error) {
	var c Cart
	raw, err := s.storage.Load(ctx, s.key(CartKey))
	switch {
	case errors.Is(err, ErrNoData):
		return c, nil
	case err != nil:
		return c, fmt.Errorf("load cart: %w", err)
	}

	if err := json.Unmarshal(raw, &c); err != nil {
		utils.ErrorLogger.WithField("namespace", s.namespace).Warnf("Discarding unreadable cart: %v", err)
		return Cart{}, nil
	}
	return c, nil
}

func (s *Store) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// mutate applies fn to a copy and commits it only after the copy is persisted.
func (s *Store) mutate(ctx context.Context, fn func(*Cart) Signal) (Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// baca ulang: request lain di sesi yang sama mungkin sudah menulis
	next, err := s.load(ctx)
	if err != nil {
		return SignalNone, err
	}
	s.cart = next.clone()
	sig := fn(&next)
	if sig == SignalNotInCart {
		return sig, nil
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return SignalNone, err
	}
	if err := s.storage.Save(ctx, s.key(CartKey), raw); err != nil {
		return SignalNone, fmt.Errorf("save cart: %w", err)
	}
	s.cart = next
	return sig, nil
}

func (s *Store) AddItem(ctx context.Context, item models.MenuItem) (Signal, error) {
	return s.mutate(ctx, func(c *Cart) Signal { return c.Add(item) })
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) (Signal, error) {
	return s.mutate(ctx, func(c *Cart) Signal { return c.Remove(itemID) })
}

func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) (Signal, error) {
	return s.mutate(ctx, func(c *Cart) Signal { return c.SetQuantity(itemID, quantity) })
}

// Clear empties the cart and removes its persisted entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.key(CartKey)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.cart.Reset()
	return nil
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// RememberTable persists the table number captured from the QR landing link.
func (s *Store) RememberTable(ctx context.Context, tableNumber string) error {
	tableNumber = strings.TrimSpace(tableNumber)
	if tableNumber == "" {
		return s.storage.Delete(ctx, s.key(TableKey))
	}
	return s.storage.Save(ctx, s.key(TableKey), []byte(tableNumber))
}

// Table returns the remembered table number, or "" when none was captured.
func (s *Store) Table(ctx context.Context) (string, error) {
	raw, err := s.storage.Load(ctx, s.key(TableKey))
	if errors.Is(err, ErrNoData) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
