package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/events"
	"github.com/mfachry/kart/internal/item"
	"github.com/mfachry/kart/internal/money"
	"github.com/mfachry/kart/internal/session"
)

// Session slot suffixes. A cart occupies three keys in the session store.
const (
	slotItems      = "_cart_items"
	slotConditions = "_cart_conditions"
	slotTaxes      = "_cart_taxes"
)

// Cart owns an item ledger and two cart-wide adjustment sets (conditions and
// taxes), persisted through the session store. All calculation is a pure
// function of the persisted snapshot; each operation performs at most one
// mutation before returning. Callers serialise concurrent mutation
// externally.
type Cart struct {
	Store  session.Store
	Bus    *events.Bus
	Format money.Formatter
	Logger zerolog.Logger

	instance   string
	sessionKey string
}

// New constructs a cart bound to a session key and fires the created event.
func New(ctx context.Context, store session.Store, bus *events.Bus, instance, sessionKey string, format money.Formatter) (*Cart, error) {
	if store == nil {
		return nil, errors.New("cart: session store is required")
	}
	if sessionKey == "" {
		return nil, errors.New("cart: session key is required")
	}
	c := &Cart{
		Store:      store,
		Bus:        bus,
		Format:     format,
		Logger:     zerolog.Nop(),
		instance:   instance,
		sessionKey: sessionKey,
	}
	c.fire(ctx, events.TopicCreated, nil)
	return c, nil
}

// Instance returns the cart instance name.
func (c *Cart) Instance() string {
	return c.instance
}

// SessionKey returns the current session key.
func (c *Cart) SessionKey() string {
	return c.sessionKey
}

// WithSession re-points the cart at a different session key.
func (c *Cart) WithSession(sessionKey string) (*Cart, error) {
	if sessionKey == "" {
		return nil, errors.New("cart: session key is required")
	}
	c.sessionKey = sessionKey
	return c, nil
}

func (c *Cart) keyItems() string      { return c.sessionKey + slotItems }
func (c *Cart) keyConditions() string { return c.sessionKey + slotConditions }
func (c *Cart) keyTaxes() string      { return c.sessionKey + slotTaxes }

// Content loads the item ledger from the session store.
func (c *Cart) Content(ctx context.Context) (*item.Ledger, error) {
	ledger := item.NewLedger()
	if err := c.loadSlot(ctx, c.keyItems(), ledger); err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	return ledger, nil
}

// Get returns the item with the given id, or nil when absent.
func (c *Cart) Get(ctx context.Context, id string) (*item.Item, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Get(id), nil
}

// Has reports whether an item with the given id is in the cart.
func (c *Cart) Has(ctx context.Context, id string) (bool, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return false, err
	}
	return ledger.Has(id), nil
}

// IsEmpty reports whether the cart holds no priced items.
func (c *Cart) IsEmpty(ctx context.Context) (bool, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return false, err
	}
	return ledger.IsEmpty(), nil
}

// GetTotalQuantity sums the quantities of all items in the cart.
func (c *Cart) GetTotalQuantity(ctx context.Context) (int, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return 0, err
	}
	return ledger.TotalQuantity(), nil
}

func (c *Cart) saveLedger(ctx context.Context, ledger *item.Ledger) error {
	if err := c.saveSlot(ctx, c.keyItems(), ledger); err != nil {
		return fmt.Errorf("save cart items: %w", err)
	}
	return nil
}

func (c *Cart) loadSlot(ctx context.Context, key string, dst any) error {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func (c *Cart) saveSlot(ctx context.Context, key string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return c.Store.Put(ctx, key, data)
}

// fire emits a lifecycle event, reporting false when a listener vetoed it.
func (c *Cart) fire(ctx context.Context, topic string, payload any) bool {
	return c.Bus.Emit(ctx, events.Event{Topic: topic, Instance: c.instance, Payload: payload})
}

// conditionsSet loads the cart-wide condition set.
func (c *Cart) conditionsSet(ctx context.Context) (*condition.Set, error) {
	set := condition.NewSet()
	if err := c.loadSlot(ctx, c.keyConditions(), set); err != nil {
		return nil, fmt.Errorf("load cart conditions: %w", err)
	}
	return set, nil
}

// taxesSet loads the cart-wide tax set.
func (c *Cart) taxesSet(ctx context.Context) (*condition.Set, error) {
	set := condition.NewSet()
	if err := c.loadSlot(ctx, c.keyTaxes(), set); err != nil {
		return nil, fmt.Errorf("load cart taxes: %w", err)
	}
	return set, nil
}

func (c *Cart) saveConditions(ctx context.Context, set *condition.Set) error {
	if err := c.saveSlot(ctx, c.keyConditions(), set); err != nil {
		return fmt.Errorf("save cart conditions: %w", err)
	}
	return nil
}

func (c *Cart) saveTaxes(ctx context.Context, set *condition.Set) error {
	if err := c.saveSlot(ctx, c.keyTaxes(), set); err != nil {
		return fmt.Errorf("save cart taxes: %w", err)
	}
	return nil
}
