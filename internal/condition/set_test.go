package condition_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mfachry/kart/internal/condition"
)

func orderedCondition(t *testing.T, name string, order int) *condition.Condition {
	t.Helper()
	c := mustCondition(t, name, "misc", "subtotal", "-1")
	c.Order = order
	return c
}

func TestSetAssignsZeroOrderOnce(t *testing.T) {
	s := condition.NewSet()
	s.Put(orderedCondition(t, "first", 0))
	s.Put(orderedCondition(t, "second", 0))

	if got := s.Get("first").Order; got != 1 {
		t.Fatalf("expected first to receive order 1, got %d", got)
	}
	if got := s.Get("second").Order; got != 2 {
		t.Fatalf("expected second to receive order 2, got %d", got)
	}

	// An explicit later insertion with a lower order re-sorts but does not
	// re-assign the orders handed out earlier.
	s.Put(orderedCondition(t, "third", 1))
	if got := s.Names(); !reflect.DeepEqual(got, []string{"first", "third", "second"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestSetSortsStable(t *testing.T) {
	s := condition.NewSet(
		orderedCondition(t, "b", 2),
		orderedCondition(t, "a", 1),
		orderedCondition(t, "c", 2),
	)
	if got := s.Names(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestSetPutReplacesByName(t *testing.T) {
	s := condition.NewSet(orderedCondition(t, "sale", 3))
	replacement := mustCondition(t, "sale", "sale", "subtotal", "-10%")
	replacement.Order = 3
	s.Put(replacement)

	if s.Len() != 1 {
		t.Fatalf("expected one condition, got %d", s.Len())
	}
	if got := s.Get("sale").Value; got != "-10%" {
		t.Fatalf("expected replacement value, got %q", got)
	}
}

func TestSetRemoveAndLookup(t *testing.T) {
	s := condition.NewSet(orderedCondition(t, "a", 1), orderedCondition(t, "b", 2))
	if !s.Has("a") {
		t.Fatal("expected a present")
	}
	s.Remove("a")
	if s.Has("a") {
		t.Fatal("expected a removed")
	}
	if s.Len() != 1 {
		t.Fatalf("expected one remaining, got %d", s.Len())
	}
	if s.Get("missing") != nil {
		t.Fatal("expected nil for missing name")
	}
}

func TestSetByTypeAndTarget(t *testing.T) {
	sale := mustCondition(t, "sale", "sale", "subtotal", "-5%")
	promo := mustCondition(t, "promo", "promo", "total", "-10")
	s := condition.NewSet(sale, promo)

	if got := s.ByType("sale"); len(got) != 1 || got[0].Name != "sale" {
		t.Fatalf("unexpected ByType result %v", got)
	}
	if got := s.ByTarget("total"); len(got) != 1 || got[0].Name != "promo" {
		t.Fatalf("unexpected ByTarget result %v", got)
	}
}

func TestSetJSONRoundTrip(t *testing.T) {
	s := condition.NewSet(
		orderedCondition(t, "second", 5),
		orderedCondition(t, "first", 2),
	)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := condition.NewSet()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := restored.Names(); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("unexpected restored order %v", got)
	}
	if got := restored.Get("second").Order; got != 5 {
		t.Fatalf("expected stored order preserved, got %d", got)
	}
}
