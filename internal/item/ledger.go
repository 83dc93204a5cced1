package item

import "encoding/json"

// Ledger is the ordered collection of cart items, keyed by id with insertion
// order preserved.
type Ledger struct {
	items []*Item
}

// NewLedger builds a ledger from zero or more items.
func NewLedger(items ...*Item) *Ledger {
	l := &Ledger{}
	for _, it := range items {
		l.Put(it)
	}
	return l
}

// Get returns the item with the given id, or nil.
func (l *Ledger) Get(id string) *Item {
	for _, it := range l.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Has reports whether an item with the given id exists.
func (l *Ledger) Has(id string) bool {
	return l.Get(id) != nil
}

// Put inserts the item, or replaces the existing entry with the same id in
// place.
func (l *Ledger) Put(it *Item) {
	if it == nil {
		return
	}
	for i, existing := range l.items {
		if existing.ID == it.ID {
			l.items[i] = it
			return
		}
	}
	l.items = append(l.items, it)
}

// Remove deletes the item with the given id, if present.
func (l *Ledger) Remove(id string) {
	for i, it := range l.items {
		if it.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// All returns the items in ledger order. The slice is a copy.
func (l *Ledger) All() []*Item {
	out := make([]*Item, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items in the ledger.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Filter returns the items for which keep returns true, in ledger order.
func (l *Ledger) Filter(keep func(*Item) bool) []*Item {
	var out []*Item
	for _, it := range l.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Group returns the items belonging to the given group container.
func (l *Ledger) Group(groupID string) []*Item {
	return l.Filter(func(it *Item) bool {
		return it.Attributes.GroupID() == groupID
	})
}

// Alternatives returns every item sharing the given item's alternative group,
// including the item itself. Items outside any alternative group yield nil.
func (l *Ledger) Alternatives(it *Item) []*Item {
	if !it.HasAlternatives() {
		return nil
	}
	altID := it.Attributes.AlternativeID()
	return l.Filter(func(other *Item) bool {
		return other.HasAlternatives() && other.Attributes.AlternativeID() == altID
	})
}

// GroupContainerIDs returns the ids of items eligible as group containers:
// entries without a quantity.
func (l *Ledger) GroupContainerIDs() []string {
	var out []string
	for _, it := range l.items {
		if it.Quantity == 0 {
			out = append(out, it.ID)
		}
	}
	return out
}

// DependableIDs returns the ids of items a dependent_id may reference:
// entries carrying a quantity.
func (l *Ledger) DependableIDs() []string {
	var out []string
	for _, it := range l.items {
		if it.Quantity != 0 {
			out = append(out, it.ID)
		}
	}
	return out
}

// TotalQuantity sums the quantities of all items.
func (l *Ledger) TotalQuantity() int {
	total := 0
	for _, it := range l.items {
		total += it.Quantity
	}
	return total
}

// IsEmpty reports whether the ledger holds no priced items. Group containers
// do not make a cart non-empty.
func (l *Ledger) IsEmpty() bool {
	for _, it := range l.items {
		if !it.Price.IsZero() {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the ledger as an ordered array of items.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.items)
}

// UnmarshalJSON decodes an ordered array of items.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.items = items
	return nil
}
