package condition

import (
	"encoding/json"
	"sort"
)

// Set is an ordered collection of conditions keyed by name. Iteration order
// is ascending by Order with insertion order preserved for equal orders.
type Set struct {
	items []*Condition
}

// NewSet builds a set from zero or more conditions, applying the usual
// order-assignment rule for each.
func NewSet(conds ...*Condition) *Set {
	s := &Set{}
	for _, c := range conds {
		s.Put(c)
	}
	return s
}

// Put inserts or overwrites a condition by name. A zero Order receives the
// current maximum order plus one (or 1 for an empty set), assigned once at
// insertion. The set is then re-sorted by order, stable for equal orders.
func (s *Set) Put(c *Condition) {
	if c == nil {
		return
	}
	if c.Order == 0 {
		if last := s.last(); last != nil {
			c.Order = last.Order + 1
		} else {
			c.Order = 1
		}
	}
	replaced := false
	for i, existing := range s.items {
		if existing.Name == c.Name {
			s.items[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		s.items = append(s.items, c)
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Order < s.items[j].Order
	})
}

// Get returns the condition with the given name, or nil.
func (s *Set) Get(name string) *Condition {
	for _, c := range s.items {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Has reports whether a condition with the given name exists.
func (s *Set) Has(name string) bool {
	return s.Get(name) != nil
}

// Remove deletes the condition with the given name, if present.
func (s *Set) Remove(name string) {
	for i, c := range s.items {
		if c.Name == name {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ByType returns the conditions whose Type matches, in set order.
func (s *Set) ByType(typ string) []*Condition {
	var out []*Condition
	for _, c := range s.items {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// ByTarget returns the conditions whose Target matches, in set order.
func (s *Set) ByTarget(target string) []*Condition {
	var out []*Condition
	for _, c := range s.items {
		if c.Target == target {
			out = append(out, c)
		}
	}
	return out
}

// All returns the conditions in set order. The slice is a copy.
func (s *Set) All() []*Condition {
	out := make([]*Condition, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the condition names in set order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c.Name)
	}
	return out
}

// Len returns the number of conditions in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *Set) last() *Condition {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// MarshalJSON encodes the set as an ordered array.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.items)
}

// UnmarshalJSON decodes an ordered array of conditions. Orders are taken as
// stored; the zero-order assignment rule is not re-applied.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []*Condition
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.items = items
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Order < s.items[j].Order
	})
	return nil
}
