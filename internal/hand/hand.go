// Package hand classifies and compares Presidents card combinations.
//
// A Hand is an ordered 5-slot tuple of card ids, zero-padded at the
// front (spec.md §3). Classification is a table lookup against the
// canonical (sorted, zero-padded) tuple. The table is built once, on
// the first classification or an earlier PrecomputeTable call.
package hand

import (
	"fmt"

	"github.com/alexstennet/presidents/internal/card"
)

// Hand is a 1-5 card selection together with its classification.
type Hand struct {
	slots [5]card.ID
	kind  Kind
}

// New returns the empty hand.
func New() Hand {
	return Hand{}
}

// FromCards builds a Hand from up to 5 distinct card ids by adding
// them one at a time, so it exercises exactly the same invariants as
// the incremental selection path. Returns ErrFull/ErrDuplicate for a
// bad selection; panics on an out-of-range card id (spec.md §7: "a
// programmer/protocol error").
func FromCards(cards []card.ID) (Hand, error) {
	var h Hand
	if len(cards) > 5 {
		return Hand{}, ErrFull
	}
	for _, c := range cards {
		if err := h.Add(c); err != nil {
			return Hand{}, err
		}
	}
	return h, nil
}

// Kind reports the hand's current classification.
func (h Hand) Kind() Kind {
	return h.kind
}

// Size returns the number of occupied (non-zero) slots.
func (h Hand) Size() int {
	n := 0
	for _, c := range h.slots {
		if c != 0 {
			n++
		}
	}
	return n
}

// Slots returns the canonical zero-padded 5-slot tuple.
func (h Hand) Slots() [5]card.ID {
	return h.slots
}

// Cards returns the occupied slots as an ascending slice.
func (h Hand) Cards() []card.ID {
	out := make([]card.ID, 0, 5)
	for _, c := range h.slots {
		if c != 0 {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether c occupies one of the hand's slots.
func (h Hand) Contains(c card.ID) bool {
	for _, x := range h.slots {
		if x == c {
			return true
		}
	}
	return false
}

// Label renders the kind, spelling out INVALID-n for invalid hands as
// spec.md §3 requires (n is the selection's current size).
func (h Hand) Label() string {
	if h.kind == Invalid {
		return fmt.Sprintf("INVALID-%d", h.Size())
	}
	return h.kind.String()
}

// Add inserts c into the selection. It rejects a full selection with
// ErrFull and a repeated card with ErrDuplicate without mutating the
// hand; otherwise it inserts c at the rightmost empty slot and bubbles
// it rightward past any smaller cards already in the tail until the
// non-zero suffix is ascending again, then reclassifies.
func (h *Hand) Add(c card.ID) error {
	if !c.Valid() {
		panic("hand: invalid card id")
	}
	if h.Size() == len(h.slots) {
		return ErrFull
	}
	if h.Contains(c) {
		return ErrDuplicate
	}

	idx := -1
	for i := len(h.slots) - 1; i >= 0; i-- {
		if h.slots[i] == 0 {
			idx = i
			break
		}
	}
	h.slots[idx] = c
	for idx < len(h.slots)-1 && h.slots[idx+1] != 0 && h.slots[idx] > h.slots[idx+1] {
		h.slots[idx], h.slots[idx+1] = h.slots[idx+1], h.slots[idx]
		idx++
	}
	h.reclassify()
	return nil
}

// Remove deletes c from the selection, shifting everything left of it
// one slot to the right so zeros stay leading, then reclassifies.
// Removing from an empty hand, or a card not present, is a programmer
// error (spec.md §7) and panics.
func (h *Hand) Remove(c card.ID) {
	if h.Size() == 0 {
		panic("hand: remove from empty hand")
	}
	idx := -1
	for i, x := range h.slots {
		if x == c {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic("hand: remove of card not present in hand")
	}
	for i := idx; i > 0; i-- {
		h.slots[i] = h.slots[i-1]
	}
	h.slots[0] = 0
	h.reclassify()
}

func (h *Hand) reclassify() {
	n := h.Size()
	if n == 0 {
		h.kind = Empty
		return
	}
	ensureTable()
	if k, ok := table[h.slots]; ok {
		h.kind = k
		return
	}
	h.kind = Invalid
}
