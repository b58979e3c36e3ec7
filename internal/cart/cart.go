// Package cart implements the client-side shopping cart.
//
// A Cart is an ordered list of entries with at most one entry per product
// id. Every mutation writes the whole cart to its Store, so the stored value
// always reflects the latest in-memory state. A Cart belongs to a single
// session and is not safe for concurrent use.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Cart is the shopping cart state machine
type Cart struct {
	entries []models.CartEntry
	store   Store
	logger  *zap.Logger
}

// Open restores the cart persisted in store. Missing, unreadable or
// unparseable state yields an empty cart; the failure is only logged.
func Open(ctx context.Context, store Store, logger *zap.Logger) *Cart {
	c := &Cart{store: store, logger: logger}

	data, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("Failed to read saved cart, starting empty", zap.Error(err))
		}
		return c
	}

	entries, err := Decode(data)
	if err != nil {
		logger.Warn("Failed to parse saved cart, starting empty", zap.Error(err))
		return c
	}
	c.entries = entries
	return c
}

// Add puts one unit of p in the cart. An existing entry for p.ID is
// incremented; otherwise a new entry is appended with quantity 1.
func (c *Cart) Add(ctx context.Context, p models.Product) error {
	if i := c.index(p.ID); i >= 0 {
		c.entries[i].Quantity++
	} else {
		c.entries = append(c.entries, models.CartEntry{Product: p, Quantity: 1})
	}
	return c.save(ctx)
}

// Remove deletes the entry for id if present
func (c *Cart) Remove(ctx context.Context, id int64) error {
	if i := c.index(id); i >= 0 {
		c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
	}
	return c.save(ctx)
}

// UpdateQuantity sets the quantity for id. A quantity of zero or less
// removes the entry; an unknown id is ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, id)
	}
	if i := c.index(id); i >= 0 {
		c.entries[i].Quantity = quantity
	}
	return c.save(ctx)
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) error {
	c.entries = nil
	return c.save(ctx)
}

// Contains reports whether the cart has an entry for id
func (c *Cart) Contains(id int64) bool {
	return c.index(id) >= 0
}

// Total returns the sum of price * quantity over all entries
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(LineTotal(e))
	}
	return total
}

// Count returns the number of units in the cart
func (c *Cart) Count() int {
	count := 0
	for _, e := range c.entries {
		count += e.Quantity
	}
	return count
}

// Entries returns a copy of the entries in insertion order
func (c *Cart) Entries() []models.CartEntry {
	return append([]models.CartEntry{}, c.entries...)
}

// Len returns the number of distinct products in the cart
func (c *Cart) Len() int {
	return len(c.entries)
}

// LineTotal returns price * quantity for one entry
func LineTotal(e models.CartEntry) decimal.Decimal {
	return decimal.NewFromFloat(e.Price).Mul(decimal.NewFromInt(int64(e.Quantity)))
}

func (c *Cart) index(id int64) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) save(ctx context.Context) error {
	data, err := Encode(c.entries)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, data); err != nil {
		c.logger.Warn("Failed to save cart", zap.Error(err), zap.Int("entries", len(c.entries)))
		return err
	}
	return nil
}
