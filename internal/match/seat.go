package match

import (
	"github.com/alexstennet/presidents/internal/card"
	"github.com/alexstennet/presidents/internal/chamber"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/hand"
)

// Seat is one of the match's four fixed player slots (spec.md §3).
type Seat struct {
	Index   int
	Name    string
	Ident   string // opaque transport identity (e.g. a Nakama user id)
	Chamber *chamber.Chamber

	selection hand.Hand
	finished  bool
	hasPassed bool
	position  int // 1-based finish position once finished, 0 until then
}

// Selection returns the seat's current selection-in-progress.
func (s *Seat) Selection() hand.Hand { return s.selection }

// Finished reports whether the seat has emptied its hand.
func (s *Seat) Finished() bool { return s.finished }

// Position returns the seat's 1-based finishing position, or 0 if it
// has not finished yet.
func (s *Seat) Position() int { return s.position }

// seatSink tags every event a seat's Chamber emits with that seat's
// index before forwarding it to the match's real sink, so ScopeSeat
// events (spec.md §6) reach the right recipient. The Chamber itself
// stays seat-agnostic (spec.md §4.2: "agnostic to transport").
type seatSink struct {
	seat int
	sink event.Sink
}

func (s seatSink) Emit(e event.Event) {
	e.Seat = s.seat
	s.sink.Emit(e)
}

func newSeat(index int, name, ident string, cards []card.ID, sink event.Sink) *Seat {
	return &Seat{
		Index:   index,
		Name:    name,
		Ident:   ident,
		Chamber: chamber.New(cards, seatSink{seat: index, sink: sink}),
	}
}
