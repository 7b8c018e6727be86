// Package chamber implements the per-player card/hand cross-index
// (spec.md §4.2): a bidirectional index between the cards a player
// holds and the stored hands that reference them, so that playing a
// card can drop every stored hand it belongs to in O(cards-in-those-
// hands) time instead of rescanning every stored hand.
//
// Internally this is two arena-indexed intrusive doubly-linked
// structures joined by cross references, per spec.md §9's design note:
// a per-card list of "hand-pointer" nodes, and a list of stored hands
// whose own card-nodes point back into those per-card lists. Arena
// indices replace raw pointers so Go's GC never has to reason about
// the cross-links.
package chamber

import (
	"errors"

	"github.com/alexstennet/presidents/internal/card"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/hand"
)

// Errors surfaced as user-correctable alerts (spec.md §7).
var (
	ErrCardAbsent       = errors.New("chamber: card not held")
	ErrHandNotStorable  = errors.New("chamber: hand must be valid and hold at least 2 cards")
	ErrHandDuplicate    = errors.New("chamber: an identical hand is already stored")
	ErrHandMissingCards = errors.New("chamber: hand references a card not held")
)

const noNode = -1

// ptrNode is one node in a per-card doubly-linked list of hand
// pointers. It lives in the shared handPtrs arena.
type ptrNode struct {
	prev, next int // arena indices within the owning card's list, noNode if absent
	handIdx    int // index into the hands arena
}

// storedHand is one registered hand, plus enough back-reference state
// to unlink it from every card's list in one pass.
type storedHand struct {
	alive    bool
	h        hand.Hand
	selected int   // selected-count: bumped/decremented by select/deselect (spec.md §4.2)
	nodes    []int // per held card, the arena index of this hand's ptrNode in that card's list
}

// cardSlot is the per-card-id list head. present=false models "card
// absent" (distinct from present=true with an empty list, spec.md §4.2).
type cardSlot struct {
	present  bool
	headNode int // arena index of the first ptrNode in this card's list, noNode if empty
}

// Chamber is one player's card/hand cross-index.
type Chamber struct {
	cards [card.Count + 1]cardSlot // index 1..52; 0 unused

	handPtrs    []ptrNode
	handPtrFree []int

	hands    []storedHand
	handFree []int

	sink event.Sink
}

// New builds a Chamber holding exactly the given cards, with no stored
// hands. Cost is O(n) in len(cards).
func New(cards []card.ID, sink event.Sink) *Chamber {
	if sink == nil {
		sink = event.Nop()
	}
	c := &Chamber{sink: sink}
	for id := range c.cards {
		c.cards[id].headNode = noNode
	}
	for _, id := range cards {
		c.cards[id] = cardSlot{present: true, headNode: noNode}
	}
	return c
}

// ContainsCard reports whether c is still held. O(1).
func (ch *Chamber) ContainsCard(c card.ID) bool {
	return ch.cards[c].present
}

// IterCards returns the held cards in ascending order. O(52).
func (ch *Chamber) IterCards() []card.ID {
	out := make([]card.ID, 0, card.Count)
	for id := card.Min; id <= card.Max; id++ {
		if ch.cards[id].present {
			out = append(out, id)
		}
	}
	return out
}

// AddCard installs c as holdable. Rare after deal (spec.md §4.2); O(1).
func (ch *Chamber) AddCard(c card.ID) {
	if ch.cards[c].present {
		return
	}
	ch.cards[c] = cardSlot{present: true, headNode: noNode}
	ch.sink.Emit(event.Event{Name: event.AddCard, Payload: c, Scope: event.ScopeSeat})
}

// allocPtrNode returns a fresh or recycled arena index for a ptrNode.
func (ch *Chamber) allocPtrNode(n ptrNode) int {
	if k := len(ch.handPtrFree); k > 0 {
		idx := ch.handPtrFree[k-1]
		ch.handPtrFree = ch.handPtrFree[:k-1]
		ch.handPtrs[idx] = n
		return idx
	}
	ch.handPtrs = append(ch.handPtrs, n)
	return len(ch.handPtrs) - 1
}

func (ch *Chamber) freePtrNode(idx int) {
	ch.handPtrFree = append(ch.handPtrFree, idx)
}

func (ch *Chamber) allocHand(h storedHand) int {
	if k := len(ch.handFree); k > 0 {
		idx := ch.handFree[k-1]
		ch.handFree = ch.handFree[:k-1]
		ch.hands[idx] = h
		return idx
	}
	ch.hands = append(ch.hands, h)
	return len(ch.hands) - 1
}

func (ch *Chamber) freeHand(idx int) {
	ch.hands[idx] = storedHand{}
	ch.handFree = append(ch.handFree, idx)
}

// linkFront pushes a new ptrNode referencing handIdx onto the front of
// c's per-card list, returning the new node's arena index.
func (ch *Chamber) linkFront(c card.ID, handIdx int) int {
	slot := &ch.cards[c]
	idx := ch.allocPtrNode(ptrNode{prev: noNode, next: slot.headNode, handIdx: handIdx})
	if slot.headNode != noNode {
		ch.handPtrs[slot.headNode].prev = idx
	}
	slot.headNode = idx
	return idx
}

// unlink removes the ptrNode at nodeIdx from c's per-card list and
// frees it.
func (ch *Chamber) unlink(c card.ID, nodeIdx int) {
	n := ch.handPtrs[nodeIdx]
	slot := &ch.cards[c]
	if n.prev != noNode {
		ch.handPtrs[n.prev].next = n.next
	} else {
		slot.headNode = n.next
	}
	if n.next != noNode {
		ch.handPtrs[n.next].prev = n.prev
	}
	ch.freePtrNode(nodeIdx)
}

// ContainsHand reports whether an identical hand (by canonical value)
// is already stored. O(stored hands).
func (ch *Chamber) ContainsHand(h hand.Hand) bool {
	for i := range ch.hands {
		sh := &ch.hands[i]
		if sh.alive && sh.h.Slots() == h.Slots() {
			return true
		}
	}
	return false
}

// AddHand registers h as a stored hand. h must be valid and hold at
// least 2 cards (spec.md §6 "store": singles are not storable), every
// one of its cards must be present, and it must not duplicate an
// already-stored hand. Linking the hand costs O(size(h)); the
// duplicate check before it is a ContainsHand scan, O(stored hands).
func (ch *Chamber) AddHand(h hand.Hand) (HandID, error) {
	if h.Kind() == hand.Invalid || h.Kind() == hand.Empty || h.Size() < 2 {
		return -1, ErrHandNotStorable
	}
	cards := h.Cards()
	for _, c := range cards {
		if !ch.cards[c].present {
			return -1, ErrHandMissingCards
		}
	}
	if ch.ContainsHand(h) {
		return -1, ErrHandDuplicate
	}

	handIdx := ch.allocHand(storedHand{alive: true, h: h, nodes: make([]int, 0, len(cards))})
	sh := &ch.hands[handIdx]
	for _, c := range cards {
		nodeIdx := ch.linkFront(c, handIdx)
		sh.nodes = append(sh.nodes, nodeIdx)
	}

	ch.sink.Emit(event.Event{Name: event.StoreHand, Payload: h, Scope: event.ScopeSeat})
	return HandID(handIdx), nil
}

// HandID identifies a stored hand for the lifetime of its Chamber.
type HandID int

// HandByID returns the stored hand registered under id, if it is
// still live.
func (ch *Chamber) HandByID(id HandID) (hand.Hand, bool) {
	idx := int(id)
	if idx < 0 || idx >= len(ch.hands) || !ch.hands[idx].alive {
		return hand.Hand{}, false
	}
	return ch.hands[idx].h, true
}

// StoredHands returns the ids of every live stored hand.
func (ch *Chamber) StoredHands() []HandID {
	var out []HandID
	for i := range ch.hands {
		if ch.hands[i].alive {
			out = append(out, HandID(i))
		}
	}
	return out
}

// removeHandByIndex detaches the stored hand at handIdx from every
// card's list and frees it, emitting remove-hand.
func (ch *Chamber) removeHandByIndex(handIdx int) {
	sh := &ch.hands[handIdx]
	cards := sh.h.Cards()
	for i, c := range cards {
		ch.unlink(c, sh.nodes[i])
	}
	h := sh.h
	ch.freeHand(handIdx)
	ch.sink.Emit(event.Event{Name: event.RemoveHand, Payload: h, Scope: event.ScopeSeat})
}

// handsContaining returns the live stored-hand indices referencing c,
// via a single walk of c's per-card list. O(number of stored hands
// containing c).
func (ch *Chamber) handsContaining(c card.ID) []int {
	var out []int
	for idx := ch.cards[c].headNode; idx != noNode; idx = ch.handPtrs[idx].next {
		out = append(out, ch.handPtrs[idx].handIdx)
	}
	return out
}

// SelectCard bumps the selected-count of every stored hand containing
// c, emitting select-hand when a hand's count crosses 0->1.
// O(number of stored hands containing c).
func (ch *Chamber) SelectCard(c card.ID) error {
	if !ch.cards[c].present {
		return ErrCardAbsent
	}
	for _, handIdx := range ch.handsContaining(c) {
		sh := &ch.hands[handIdx]
		sh.selected++
		if sh.selected == 1 {
			ch.sink.Emit(event.Event{Name: event.SelectHand, Payload: sh.h, Scope: event.ScopeSeat})
		}
	}
	ch.sink.Emit(event.Event{Name: event.SelectCard, Payload: c, Scope: event.ScopeSeat})
	return nil
}

// DeselectCard is SelectCard's inverse: decrements selected-counts,
// emitting deselect-hand when a count crosses 1->0.
func (ch *Chamber) DeselectCard(c card.ID) error {
	if !ch.cards[c].present {
		return ErrCardAbsent
	}
	for _, handIdx := range ch.handsContaining(c) {
		sh := &ch.hands[handIdx]
		sh.selected--
		if sh.selected == 0 {
			ch.sink.Emit(event.Event{Name: event.DeselectHand, Payload: sh.h, Scope: event.ScopeSeat})
		}
	}
	ch.sink.Emit(event.Event{Name: event.DeselectCard, Payload: c, Scope: event.ScopeSeat})
	return nil
}

// RemoveCard plays c: every stored hand containing c is removed
// entirely, which detaches each such hand from its *other* cards'
// lists too. Cost is O(sum of size of affected hands).
func (ch *Chamber) RemoveCard(c card.ID) error {
	if !ch.cards[c].present {
		return ErrCardAbsent
	}
	for _, handIdx := range ch.handsContaining(c) {
		if ch.hands[handIdx].alive {
			ch.removeHandByIndex(handIdx)
		}
	}
	ch.cards[c] = cardSlot{present: false, headNode: noNode}
	ch.sink.Emit(event.Event{Name: event.RemoveCard, Payload: c, Scope: event.ScopeSeat})
	return nil
}

// ClearHands drops every stored hand but keeps the held cards.
// O(total stored pointers).
func (ch *Chamber) ClearHands() {
	for idx := range ch.hands {
		if ch.hands[idx].alive {
			ch.removeHandByIndex(idx)
		}
	}
}
