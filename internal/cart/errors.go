package cart

import "errors"

// ErrInvalidItem indicates a missing id, name, or a price/quantity that is
// neither supplied nor derivable.
var ErrInvalidItem = errors.New("invalid item")

// ErrInvalidGroup indicates a group_id attribute referencing a nonexistent
// group container.
var ErrInvalidGroup = errors.New("invalid group reference")

// ErrInvalidDependent indicates a dependent_id attribute referencing a
// nonexistent non-group item.
var ErrInvalidDependent = errors.New("invalid dependent reference")

// ErrItemNotFound indicates the requested item is not in the cart.
var ErrItemNotFound = errors.New("item not found")
