package chamber

import (
	"testing"

	"github.com/alexstennet/presidents/internal/card"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/hand"
)

func idsRange(lo, hi card.ID) []card.ID {
	out := make([]card.ID, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		out = append(out, c)
	}
	return out
}

func mustHand(t *testing.T, cards []card.ID) hand.Hand {
	t.Helper()
	h, err := hand.FromCards(cards)
	if err != nil {
		t.Fatalf("FromCards(%v): %v", cards, err)
	}
	return h
}

// Scenario from spec.md §8.3: start with cards 1..13, store triple
// {1,2,3}, remove_card(2) drops the hand and leaves 1 and 3 with
// empty pointer lists.
func TestRemoveCardDropsContainingHands(t *testing.T) {
	rec := &event.Recorder{}
	ch := New(idsRange(1, 13), rec)

	triple := mustHand(t, []card.ID{1, 2, 3})
	_, err := ch.AddHand(triple)
	if err != nil {
		t.Fatalf("AddHand: %v", err)
	}
	if !ch.ContainsHand(triple) {
		t.Fatal("expected triple to be stored")
	}

	if err := ch.RemoveCard(2); err != nil {
		t.Fatalf("RemoveCard: %v", err)
	}

	if ch.ContainsCard(2) {
		t.Error("card 2 should be gone")
	}
	if ch.ContainsHand(triple) {
		t.Error("triple should have been dropped when card 2 was removed")
	}
	if len(ch.handsContaining(1)) != 0 {
		t.Error("card 1 should have an empty pointer list")
	}
	if len(ch.handsContaining(3)) != 0 {
		t.Error("card 3 should have an empty pointer list")
	}
}

func TestAddHandRejectsSinglesAndDuplicatesAndMissingCards(t *testing.T) {
	ch := New(idsRange(1, 13), nil)

	single := mustHand(t, []card.ID{1})
	_, err := ch.AddHand(single)
	if err != ErrHandNotStorable {
		t.Errorf("AddHand(single) = %v, want ErrHandNotStorable", err)
	}

	pair := mustHand(t, []card.ID{1, 2})
	_, err = ch.AddHand(pair)
	if err != nil {
		t.Fatalf("AddHand(pair): %v", err)
	}
	_, err = ch.AddHand(pair)
	if err != ErrHandDuplicate {
		t.Errorf("AddHand(duplicate pair) = %v, want ErrHandDuplicate", err)
	}

	outOfHand := mustHand(t, []card.ID{13, 14})
	_, err = ch.AddHand(outOfHand)
	if err != ErrHandMissingCards {
		t.Errorf("AddHand(card not held) = %v, want ErrHandMissingCards", err)
	}
}

func TestSelectDeselectRoundTripIsObservationallyIdentical(t *testing.T) {
	rec := &event.Recorder{}
	ch := New(idsRange(1, 13), rec)
	pair := mustHand(t, []card.ID{1, 2})
	_, err := ch.AddHand(pair)
	if err != nil {
		t.Fatal(err)
	}

	before := len(ch.hands)

	if err := ch.SelectCard(1); err != nil {
		t.Fatal(err)
	}
	if err := ch.DeselectCard(1); err != nil {
		t.Fatal(err)
	}

	if ch.hands[0].selected != 0 {
		t.Errorf("selected count = %d, want 0 after round trip", ch.hands[0].selected)
	}
	if len(ch.hands) != before {
		t.Errorf("hand count changed across select/deselect round trip")
	}

	var selectHands, deselectHands int
	for _, e := range rec.Events {
		switch e.Name {
		case event.SelectHand:
			selectHands++
		case event.DeselectHand:
			deselectHands++
		}
	}
	if selectHands != 1 || deselectHands != 1 {
		t.Errorf("select-hand/deselect-hand events = %d/%d, want 1/1", selectHands, deselectHands)
	}
}

func TestClearHandsKeepsCards(t *testing.T) {
	ch := New(idsRange(1, 13), nil)
	_, _ = ch.AddHand(mustHand(t, []card.ID{1, 2}))
	_, _ = ch.AddHand(mustHand(t, []card.ID{5, 6}))

	ch.ClearHands()

	for c := card.ID(1); c <= 13; c++ {
		if !ch.ContainsCard(c) {
			t.Errorf("card %d should still be held after ClearHands", c)
		}
		if got := ch.handsContaining(c); len(got) != 0 {
			t.Errorf("card %d still references %d hands after ClearHands", c, len(got))
		}
	}
}

// Invariant: after any sequence of add_hand/remove_card/clear_hands,
// every per-card pointer list contains exactly the stored hands that
// reference that card.
func TestInvariantPointerListsMatchStoredHands(t *testing.T) {
	ch := New(idsRange(1, 20), nil)
	h1 := mustHand(t, []card.ID{1, 2})
	h2 := mustHand(t, []card.ID{2, 3})
	h3 := mustHand(t, []card.ID{5, 6, 7})
	for _, h := range []hand.Hand{h1, h2, h3} {
		_, err := ch.AddHand(h)
		if err != nil {
			t.Fatalf("AddHand(%v): %v", h, err)
		}
	}

	checkInvariant(t, ch)

	_ = ch.RemoveCard(2) // should drop h1 and h2, leave h3 untouched
	checkInvariant(t, ch)

	if ch.ContainsHand(h3) == false {
		t.Error("h3 should survive removal of card 2")
	}
}

func checkInvariant(t *testing.T, ch *Chamber) {
	t.Helper()
	for c := card.ID(1); c <= card.Max; c++ {
		slot := ch.cards[c]
		referenced := ch.handsContaining(c)
		if !slot.present && len(referenced) != 0 {
			t.Fatalf("card %d absent but still referenced by %d hands", c, len(referenced))
		}
		for _, handIdx := range referenced {
			sh := ch.hands[handIdx]
			if !sh.alive {
				t.Fatalf("card %d references a dead hand", c)
			}
			if !sh.h.Contains(c) {
				t.Fatalf("card %d's pointer list references a hand that doesn't hold it", c)
			}
		}
	}
	for i := range ch.hands {
		sh := ch.hands[i]
		if !sh.alive {
			continue
		}
		for _, c := range sh.h.Cards() {
			if !ch.cards[c].present {
				t.Fatalf("stored hand references absent card %d", c)
			}
			found := false
			for _, handIdx := range ch.handsContaining(c) {
				if handIdx == i {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("stored hand %d not found in card %d's pointer list", i, c)
			}
		}
	}
}
