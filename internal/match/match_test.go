package match

import (
	"testing"

	"github.com/alexstennet/presidents/internal/card"
	"github.com/alexstennet/presidents/internal/chamber"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/hand"
)

// buildMatch constructs a Match directly from per-seat card sets,
// bypassing deal.Dealer, so tests can hand each seat exactly the cards
// a scenario needs (spec.md §8's concrete scenarios) without depending
// on a full 52-card shuffle.
func buildMatch(seatsCards [4][]card.ID, sink event.Sink) *Match {
	if sink == nil {
		sink = event.Nop()
	}
	m := &Match{sink: sink, phase: PhaseLead}
	for i, cards := range seatsCards {
		m.seats[i] = newSeat(i, "seat", "", append([]card.ID(nil), cards...), sink)
	}
	m.turn = 0
	for i, s := range m.seats {
		if s.Chamber.ContainsCard(card.Opening) {
			m.turn = i
			break
		}
	}
	return m
}

func play(t *testing.T, m *Match, seat int, cards ...card.ID) {
	t.Helper()
	for _, c := range cards {
		if err := m.CardClick(seat, c); err != nil {
			t.Fatalf("CardClick(%d, %d): %v", seat, c, err)
		}
	}
	if err := m.PlayCurrentHand(seat); err != nil {
		t.Fatalf("PlayCurrentHand(%d): %v", seat, err)
	}
}

// Scenario from spec.md §8.4: the leader attempts a hand that doesn't
// contain the 3 of clubs, gets rejected and state is unchanged, then
// retries with a hand that does and succeeds.
func TestLeadRequiresOpeningCard(t *testing.T) {
	rec := &event.Recorder{}
	m := buildMatch([4][]card.ID{
		{1, 2, 3, 4},
		{14, 15, 16},
		{27, 28, 29},
		{40, 41, 42},
	}, rec)

	if m.turn != 0 || m.phase != PhaseLead {
		t.Fatalf("setup: turn=%d phase=%v, want seat 0 in LEAD", m.turn, m.phase)
	}

	if err := m.CardClick(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.CardClick(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := m.CardClick(0, 4); err != nil {
		t.Fatal(err)
	}
	if err := m.PlayCurrentHand(0); err != ErrMissingOpeningCard {
		t.Fatalf("PlayCurrentHand = %v, want ErrMissingOpeningCard", err)
	}
	if m.phase != PhaseLead || m.turn != 0 {
		t.Fatalf("state changed after rejected lead: phase=%v turn=%d", m.phase, m.turn)
	}
	if m.handInPlay.Kind() != hand.Empty {
		t.Fatalf("hand in play set after rejected lead: %v", m.handInPlay.Kind())
	}

	// Retry: swap card 2 for card 1, keeping {1,3,4} a triple of rank 3.
	if err := m.CardClick(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.CardClick(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.PlayCurrentHand(0); err != nil {
		t.Fatalf("PlayCurrentHand after fix: %v", err)
	}
	if m.phase != PhaseFollow {
		t.Fatalf("phase = %v, want FOLLOW", m.phase)
	}
	if m.handInPlay.Kind() != hand.Triple {
		t.Fatalf("hand in play kind = %v, want TRIPLE", m.handInPlay.Kind())
	}
	if m.turn != 1 {
		t.Fatalf("turn = %d, want 1", m.turn)
	}
}

// Scenario from spec.md §8.5: with the hand in play set and 4
// unfinished seats, three consecutive passes transition to FREE, clear
// the hand in play, and leave the last non-passer current.
func TestThreePassesTransitionToFree(t *testing.T) {
	rec := &event.Recorder{}
	m := buildMatch([4][]card.ID{
		{1, 2, 3, 4},
		{14, 15, 16},
		{27, 28, 29},
		{40, 41, 42},
	}, rec)
	play(t, m, 0, 1, 2, 3) // triple {1,2,3} containing the opening card

	if m.turn != 1 {
		t.Fatalf("turn = %d, want 1", m.turn)
	}
	if err := m.Pass(1); err != nil {
		t.Fatalf("Pass(1): %v", err)
	}
	if m.phase != PhaseFollow || m.turn != 2 {
		t.Fatalf("after one pass: phase=%v turn=%d", m.phase, m.turn)
	}
	if err := m.Pass(2); err != nil {
		t.Fatalf("Pass(2): %v", err)
	}
	if m.phase != PhaseFollow || m.turn != 3 {
		t.Fatalf("after two passes: phase=%v turn=%d", m.phase, m.turn)
	}
	if err := m.Pass(3); err != nil {
		t.Fatalf("Pass(3): %v", err)
	}
	if m.phase != PhaseFree {
		t.Fatalf("phase = %v, want FREE", m.phase)
	}
	if m.turn != 0 {
		t.Fatalf("turn = %d, want 0 (the original player, uncontested)", m.turn)
	}
	if m.handInPlay.Kind() != hand.Empty {
		t.Fatalf("hand in play not cleared: %v", m.handInPlay.Kind())
	}

	var sawClear bool
	for _, e := range rec.Events {
		if e.Name == event.ClearHandInPlay {
			sawClear = true
		}
	}
	if !sawClear {
		t.Error("expected a clear-hand-in-play event")
	}
}

// Regression: a successful beat re-opens the round to every seat that
// already passed on the previous hand in play (spec.md §4.3 "FOLLOW ->
// FOLLOW on a successful beat: ... pass-counter=0"). A leads, B
// passes, C beats, D passes, A passes: turn must land on B, not end
// the round by awarding C outright.
func TestBeatReopensRoundToEarlierPasser(t *testing.T) {
	m := buildMatch([4][]card.ID{
		{1, 2},  // seat 0 (A): leads with the opening card
		{5},     // seat 1 (B): passes, then gets a second chance after C beats
		{9, 10}, // seat 2 (C): beats A's lead
		{14},    // seat 3 (D): passes
	}, nil)

	play(t, m, 0, 1) // A leads with card 1 (3 of clubs)
	if m.turn != 1 {
		t.Fatalf("turn = %d, want 1 (B)", m.turn)
	}

	if err := m.Pass(1); err != nil { // B passes on A's hand
		t.Fatalf("Pass(1): %v", err)
	}
	if m.turn != 2 {
		t.Fatalf("turn = %d, want 2 (C)", m.turn)
	}

	play(t, m, 2, 9) // C beats A's single with a higher single
	if m.phase != PhaseFollow {
		t.Fatalf("phase = %v, want FOLLOW", m.phase)
	}
	if m.turn != 3 {
		t.Fatalf("turn = %d, want 3 (D): only finished seats are skipped", m.turn)
	}

	if err := m.Pass(3); err != nil { // D passes on C's hand
		t.Fatalf("Pass(3): %v", err)
	}
	if m.turn != 0 {
		t.Fatalf("turn = %d, want 0 (A)", m.turn)
	}

	if err := m.Pass(0); err != nil { // A passes on C's hand
		t.Fatalf("Pass(0): %v", err)
	}
	if m.phase != PhaseFollow {
		t.Fatalf("phase = %v, want FOLLOW: B has not had a chance to beat C yet", m.phase)
	}
	if m.turn != 1 {
		t.Fatalf("turn = %d, want 1 (B): a beat must re-poll earlier passers", m.turn)
	}
}

// Passing is illegal while LEAD (spec.md §4.3).
func TestPassIllegalOnLead(t *testing.T) {
	m := buildMatch([4][]card.ID{{1, 2}, {14}, {27}, {40}}, nil)
	if err := m.Pass(0); err != ErrPassIllegal {
		t.Fatalf("Pass in LEAD = %v, want ErrPassIllegal", err)
	}
}

// Out-of-turn actions are rejected without mutating state.
func TestOutOfTurnRejected(t *testing.T) {
	m := buildMatch([4][]card.ID{{1, 2}, {14}, {27}, {40}}, nil)
	if err := m.Pass(1); err != ErrOutOfTurn {
		t.Fatalf("Pass(1) out of turn = %v, want ErrOutOfTurn", err)
	}
	if err := m.PlayCurrentHand(2); err != ErrOutOfTurn {
		t.Fatalf("PlayCurrentHand(2) out of turn = %v, want ErrOutOfTurn", err)
	}
}

// Scenario from spec.md §8.6: positions are recorded in finish order,
// and the match ends the instant exactly one seat remains unfinished
// — that seat is asshole regardless of what it still holds.
func TestFinishOrderingEndsMatchAtOneRemaining(t *testing.T) {
	rec := &event.Recorder{}
	m := buildMatch([4][]card.ID{
		{1},  // single 3C, must lead and finishes immediately
		{5},  // single, beats {1}
		{9},  // single, beats {5}
		{13}, // never played
	}, rec)

	play(t, m, 0, 1)
	if !m.Seat(0).Finished() || m.Seat(0).Position() != 1 {
		t.Fatalf("seat 0 finished=%v position=%d, want true/1", m.Seat(0).Finished(), m.Seat(0).Position())
	}
	if m.Ended() {
		t.Fatal("match ended too early")
	}

	play(t, m, 1, 5)
	if !m.Seat(1).Finished() || m.Seat(1).Position() != 2 {
		t.Fatalf("seat 1 finished=%v position=%d, want true/2", m.Seat(1).Finished(), m.Seat(1).Position())
	}
	if m.Ended() {
		t.Fatal("match ended too early")
	}

	play(t, m, 2, 9)
	if !m.Seat(2).Finished() || m.Seat(2).Position() != 3 {
		t.Fatalf("seat 2 finished=%v position=%d, want true/3", m.Seat(2).Finished(), m.Seat(2).Position())
	}
	if !m.Ended() {
		t.Fatal("match should have ended with one seat remaining")
	}
	if !m.Seat(3).Finished() || m.Seat(3).Position() != 4 {
		t.Fatalf("seat 3 finished=%v position=%d, want true/4 (asshole by elimination)", m.Seat(3).Finished(), m.Seat(3).Position())
	}

	want := []int{0, 1, 2, 3}
	got := m.FinishOrder()
	if len(got) != len(want) {
		t.Fatalf("FinishOrder() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FinishOrder() = %v, want %v", got, want)
		}
	}

	var finishedEvents int
	for _, e := range rec.Events {
		if e.Name == event.Finished {
			finishedEvents++
		}
	}
	if finishedEvents != 4 {
		t.Errorf("finished events = %d, want 4", finishedEvents)
	}
}

// Storing a single is rejected without mutating the selection.
func TestStoreRejectsSingle(t *testing.T) {
	m := buildMatch([4][]card.ID{{1, 5}, {14}, {27}, {40}}, nil)
	if err := m.CardClick(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Store(0); err != chamber.ErrHandNotStorable {
		t.Fatalf("Store(single) = %v, want ErrHandNotStorable", err)
	}
	if m.Seat(0).Selection().Size() != 1 {
		t.Errorf("selection mutated by a rejected store")
	}
}

// Storing moves the selection into the Chamber and clears it.
func TestStoreMovesSelectionIntoChamber(t *testing.T) {
	// Cards 1 and 2 share a rank (both 3s, different suits): a valid DOUBLE.
	m := buildMatch([4][]card.ID{{1, 2, 9, 13}, {14}, {27}, {40}}, nil)

	if err := m.CardClick(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.CardClick(0, 2); err != nil {
		t.Fatal(err)
	}
	id, err := m.Store(0)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if m.Seat(0).Selection().Size() != 0 {
		t.Errorf("selection not cleared after store: size=%d", m.Seat(0).Selection().Size())
	}
	stored, ok := m.Seat(0).Chamber.HandByID(id)
	if !ok || stored.Size() != 2 {
		t.Fatalf("stored hand not retrievable by id: ok=%v size=%d", ok, stored.Size())
	}
}

// hand-click toggles every card of a stored hand in one call.
func TestHandClickTogglesStoredHandCards(t *testing.T) {
	// Cards 1 and 2 share a rank (both 3s, different suits): a valid DOUBLE.
	m := buildMatch([4][]card.ID{{1, 2, 9, 13}, {14}, {27}, {40}}, nil)
	if err := m.CardClick(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.CardClick(0, 2); err != nil {
		t.Fatal(err)
	}
	id, err := m.Store(0)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.HandClick(0, id); err != nil {
		t.Fatalf("HandClick: %v", err)
	}
	sel := m.Seat(0).Selection()
	if !sel.Contains(1) || !sel.Contains(2) {
		t.Fatalf("selection after hand-click = %v, want {1,2}", sel.Cards())
	}

	if err := m.HandClick(0, id); err != nil {
		t.Fatalf("HandClick (untoggle): %v", err)
	}
	if m.Seat(0).Selection().Size() != 0 {
		t.Errorf("selection not empty after re-clicking the same stored hand")
	}
}

// Regression: storing a hand must not leave the new stored hand's
// selected-count negative (spec.md §4.2). Re-selecting one of its
// cards afterward has to cross 0->1 and emit select-hand; if Store
// corrupted the count, re-selecting would only walk it from negative
// toward zero and the highlight event would never fire.
func TestStoreThenReselectEmitsSelectHand(t *testing.T) {
	rec := &event.Recorder{}
	m := buildMatch([4][]card.ID{{1, 2, 9, 13}, {14}, {27}, {40}}, rec)

	if err := m.CardClick(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.CardClick(0, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Store(0); err != nil {
		t.Fatalf("Store: %v", err)
	}

	rec.Events = nil
	if err := m.CardClick(0, 1); err != nil {
		t.Fatalf("CardClick after store: %v", err)
	}

	var sawSelectHand bool
	for _, e := range rec.Events {
		if e.Name == event.SelectHand {
			sawSelectHand = true
		}
	}
	if !sawSelectHand {
		t.Error("expected a select-hand event when re-selecting a just-stored hand's card")
	}
}

func TestCardClickRejectsUnheldCard(t *testing.T) {
	m := buildMatch([4][]card.ID{{1}, {14}, {27}, {40}}, nil)
	if err := m.CardClick(0, 2); err != ErrCardNotHeld {
		t.Fatalf("CardClick(unheld) = %v, want ErrCardNotHeld", err)
	}
}
