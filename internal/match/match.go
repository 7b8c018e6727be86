// Package match drives the four-seat Presidents trick/turn protocol
// (spec.md §4.3): lead/follow/free turn states, the pass-to-round-reset
// rule, and finishing order, on top of each seat's Chamber (§4.2) and
// the Hand classifier/comparator (§4.1).
package match

import (
	"github.com/alexstennet/presidents/internal/card"
	"github.com/alexstennet/presidents/internal/chamber"
	"github.com/alexstennet/presidents/internal/config"
	"github.com/alexstennet/presidents/internal/deal"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/hand"
)

// Phase is the match-wide turn state (spec.md §4.3's LEAD/FOLLOW/FREE,
// plus Ended for "exactly one seat remains unfinished").
type Phase int

const (
	PhaseLead Phase = iota
	PhaseFollow
	PhaseFree
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLead:
		return "LEAD"
	case PhaseFollow:
		return "FOLLOW"
	case PhaseFree:
		return "FREE"
	case PhaseEnded:
		return "ENDED"
	default:
		return "?"
	}
}

// SeatSetup names a seat before the match is dealt.
type SeatSetup struct {
	Name  string
	Ident string
}

// Match is one four-seat Presidents game: the seat rotation, the
// hand-in-play, and the state machine that drives both (spec.md §3,
// §4.3). A Match is a single logical actor (spec.md §5): intents are
// applied one at a time by its caller; Match does no locking of its
// own.
type Match struct {
	seats [4]*Seat

	turn       int
	phase      Phase
	handInPlay hand.Hand
	lastPlayer int

	finishOrder []int

	sink event.Sink
}

// New deals a fresh match: four sorted 13-card hands from dealer, one
// Chamber per seat, the seat holding the 3 of clubs set to lead
// (spec.md §4.3 "Setup"), and an assign-cards event emitted to each
// seat.
func New(setups [4]SeatSetup, dealer deal.Dealer, sink event.Sink) *Match {
	if sink == nil {
		sink = event.Nop()
	}
	dealt := dealer.Deal()

	m := &Match{sink: sink, phase: PhaseLead}
	for i := 0; i < 4; i++ {
		cards := append([]card.ID(nil), dealt[i][:]...)
		m.seats[i] = newSeat(i, setups[i].Name, setups[i].Ident, cards, sink)
	}

	m.turn = 0
	for i, s := range m.seats {
		if s.Chamber.ContainsCard(card.Opening) {
			m.turn = i
			break
		}
	}

	for i, s := range m.seats {
		m.sink.Emit(event.Event{
			Name:    event.AssignCards,
			Payload: AssignCardsPayload{Cards: s.Chamber.IterCards()},
			Scope:   event.ScopeSeat,
			Seat:    i,
		})
	}
	return m
}

// Turn returns the seat index whose turn it currently is.
func (m *Match) Turn() int { return m.turn }

// Phase returns the current match-wide turn state.
func (m *Match) Phase() Phase { return m.phase }

// HandInPlay returns the hand the current seat must beat. Only
// meaningful in PhaseFollow; in PhaseLead and PhaseFree there is no
// hand to beat (spec.md §3's LEAD/FREE sentinels).
func (m *Match) HandInPlay() hand.Hand { return m.handInPlay }

// Seat returns seat i, 0..3.
func (m *Match) Seat(i int) *Seat { return m.seatAt(i) }

// FinishOrder returns the seat indices in the order they finished.
func (m *Match) FinishOrder() []int {
	return append([]int(nil), m.finishOrder...)
}

// Ended reports whether the match is over: once only one seat was left
// unfinished, that seat was placed last and the match ended.
func (m *Match) Ended() bool { return m.phase == PhaseEnded }

func (m *Match) seatAt(i int) *Seat {
	if i < 0 || i >= 4 {
		invalidSeat(i)
	}
	return m.seats[i]
}

func (m *Match) unfinishedCount() int {
	n := 0
	for _, s := range m.seats {
		if !s.finished {
			n++
		}
	}
	return n
}

// nextSeat finds the next seat after from in rotation order that is
// unfinished, optionally also skipping seats that have already passed
// this round.
func (m *Match) nextSeat(from int, skipPassed bool) int {
	for i := 1; i <= 4; i++ {
		idx := (from + i) % 4
		s := m.seats[idx]
		if s.finished {
			continue
		}
		if skipPassed && s.hasPassed {
			continue
		}
		return idx
	}
	panic("match: no eligible next seat")
}

func (m *Match) fail(seat int, err error) error {
	m.sink.Emit(event.Event{
		Name:    event.Alert,
		Payload: AlertPayload{Alert: err.Error()},
		Scope:   event.ScopeSeat,
		Seat:    seat,
	})
	return err
}

func (m *Match) message(msg string) {
	m.sink.Emit(event.Event{Name: event.Message, Payload: MessagePayload{Msg: msg}, Scope: event.ScopeAll})
}

// CardClick toggles c's presence in seat's current selection (spec.md
// §6 "card-click"): adds it if absent, removes it if present. Adding
// to a full selection fails with hand.ErrFull and leaves the selection
// unchanged.
func (m *Match) CardClick(seat int, c card.ID) error {
	s := m.seatAt(seat)
	if !s.Chamber.ContainsCard(c) {
		return m.fail(seat, ErrCardNotHeld)
	}
	if s.selection.Contains(c) {
		s.selection.Remove(c)
		_ = s.Chamber.DeselectCard(c)
		return nil
	}
	if err := s.selection.Add(c); err != nil {
		return m.fail(seat, err)
	}
	_ = s.Chamber.SelectCard(c)
	return nil
}

// HandClick interprets a stored hand as a batch of card-click toggles
// over its cards (spec.md §6 "hand-click"), applied one at a time.
func (m *Match) HandClick(seat int, id chamber.HandID) error {
	s := m.seatAt(seat)
	h, ok := s.Chamber.HandByID(id)
	if !ok {
		return m.fail(seat, ErrHandNotFound)
	}
	for _, c := range h.Cards() {
		if err := m.CardClick(seat, c); err != nil {
			return err
		}
	}
	return nil
}

// ClearCurrentHand deselects every card in seat's current selection.
func (m *Match) ClearCurrentHand(seat int) error {
	s := m.seatAt(seat)
	for _, c := range s.selection.Cards() {
		_ = s.Chamber.DeselectCard(c)
	}
	s.selection = hand.New()
	m.sink.Emit(event.Event{Name: event.ClearCurrentHand, Scope: event.ScopeSeat, Seat: seat})
	return nil
}

// Store moves seat's current selection into its Chamber as a stored
// hand (spec.md §6 "store"), iff it is valid and holds at least 2
// cards; singles, invalid selections, and duplicates are rejected
// without mutating anything.
func (m *Match) Store(seat int) (chamber.HandID, error) {
	s := m.seatAt(seat)
	selected := s.selection
	cards := selected.Cards()

	// Deselect before registering the hand: AddHand links the new
	// stored hand with selected=0, so deselecting its own cards
	// afterward would walk straight into that fresh hand and drive its
	// count negative (spec.md §4.2's selected-count invariant). Doing
	// it first only ever touches hands that existed before this call.
	for _, c := range cards {
		_ = s.Chamber.DeselectCard(c)
	}

	id, err := s.Chamber.AddHand(selected)
	if err != nil {
		for _, c := range cards {
			_ = s.Chamber.SelectCard(c)
		}
		return -1, m.fail(seat, err)
	}
	s.selection = hand.New()
	return id, nil
}

// ClearStoredHands drops every stored hand for seat, keeping its cards.
func (m *Match) ClearStoredHands(seat int) error {
	m.seatAt(seat).Chamber.ClearHands()
	return nil
}

// PlayCurrentHand applies seat's current selection as its play for
// this turn (spec.md §6 "play-current-hand"), enforcing the LEAD/
// FOLLOW/FREE rules of §4.3.
func (m *Match) PlayCurrentHand(seat int) error {
	if m.phase == PhaseEnded {
		return m.fail(seat, ErrMatchEnded)
	}
	if seat != m.turn {
		return m.fail(seat, ErrOutOfTurn)
	}
	s := m.seatAt(seat)
	if s.finished {
		panic("match: turn rests on a finished seat")
	}

	played := s.selection
	if played.Kind() == hand.Invalid || played.Kind() == hand.Empty {
		return m.fail(seat, ErrInvalidHand)
	}

	switch m.phase {
	case PhaseLead:
		if !played.Contains(card.Opening) {
			return m.fail(seat, ErrMissingOpeningCard)
		}
	case PhaseFollow:
		switch hand.Compare(played, m.handInPlay) {
		case hand.Incomparable:
			return m.fail(seat, ErrIncomparableKind)
		case hand.Less, hand.Equal:
			return m.fail(seat, ErrCannotBeat)
		}
	case PhaseFree:
		// any valid hand is allowed; no beat constraint.
	}

	// Commit: playing a hand removes every one of its cards from the
	// seat's Chamber, which also drops any stored hand referencing
	// them (spec.md §4.2 remove_card).
	for _, c := range played.Cards() {
		_ = s.Chamber.RemoveCard(c)
	}
	s.selection = hand.New()

	m.handInPlay = played
	m.lastPlayer = seat
	m.phase = PhaseFollow

	// A successful beat re-opens the round (spec.md §4.3: "FOLLOW ->
	// FOLLOW on a successful beat: ... pass-counter=0"): every
	// unfinished seat, including ones that already passed on the
	// previous hand in play, is entitled to try to beat this one.
	for _, other := range m.seats {
		if !other.finished {
			other.hasPassed = false
		}
	}

	m.sink.Emit(event.Event{Name: event.HandInPlay, Payload: HandInPlayPayload{Hand: played.Label()}, Scope: event.ScopeAll})
	m.message(s.Name + " plays " + played.Label())

	if len(s.Chamber.IterCards()) == 0 {
		m.finishSeat(seat)
	}

	if m.phase != PhaseEnded {
		m.turn = m.nextSeat(seat, false)
	}
	return nil
}

// Pass marks seat as passed for the current round (spec.md §6 "pass-
// current-hand"). Illegal while LEAD or FREE, since there is no hand
// in play to decline.
func (m *Match) Pass(seat int) error {
	if m.phase == PhaseEnded {
		return m.fail(seat, ErrMatchEnded)
	}
	if seat != m.turn {
		return m.fail(seat, ErrOutOfTurn)
	}
	s := m.seatAt(seat)
	if s.finished {
		panic("match: turn rests on a finished seat")
	}
	if m.phase != PhaseFollow {
		return m.fail(seat, ErrPassIllegal)
	}

	s.hasPassed = true
	m.message(s.Name + " passes")

	var activeNotPassed []int
	for i, ss := range m.seats {
		if !ss.finished && !ss.hasPassed {
			activeNotPassed = append(activeNotPassed, i)
		}
	}

	switch len(activeNotPassed) {
	case 0:
		// The seat that set the hand in play has since finished and
		// everyone remaining passed too: the round goes to whoever is
		// next in rotation after that seat (service.go's
		// findNextActivePlayerInOrder, generalized).
		m.enterFree(m.nextSeat(m.lastPlayer, false))
	case 1:
		// Standard case: everyone else passed, leaving one winner.
		m.enterFree(activeNotPassed[0])
	default:
		m.turn = m.nextSeat(seat, true)
	}
	return nil
}

func (m *Match) enterFree(winner int) {
	m.phase = PhaseFree
	m.handInPlay = hand.New()
	for _, s := range m.seats {
		s.hasPassed = false
	}
	m.turn = winner
	m.sink.Emit(event.Event{Name: event.ClearHandInPlay, Scope: event.ScopeAll})
}

func (m *Match) finishSeat(seat int) {
	s := m.seats[seat]
	s.finished = true
	m.finishOrder = append(m.finishOrder, seat)
	s.position = len(m.finishOrder)

	cfg := config.GetMatchConfig()
	m.sink.Emit(event.Event{Name: event.Finished, Scope: event.ScopeSeat, Seat: seat})
	m.message(s.Name + " finishes as " + finishLabel(cfg, s.position))

	if m.unfinishedCount() == 1 {
		for i, last := range m.seats {
			if last.finished {
				continue
			}
			last.finished = true
			m.finishOrder = append(m.finishOrder, i)
			last.position = len(m.finishOrder)
			m.sink.Emit(event.Event{Name: event.Finished, Scope: event.ScopeSeat, Seat: i})
			m.message(last.Name + " finishes as " + finishLabel(cfg, last.position))
			break
		}
		m.phase = PhaseEnded
	}
}

func finishLabel(cfg *config.MatchConfig, position int) string {
	if position >= 1 && position <= len(cfg.FinishLabels) {
		return cfg.FinishLabels[position-1]
	}
	return "unplaced"
}
