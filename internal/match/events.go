package match

import "github.com/alexstennet/presidents/internal/card"

// Payload shapes for the match-level outbound events spec.md §6 names
// (the Chamber's own events carry their payloads directly — a card.ID
// or a hand.Hand — as built in internal/chamber).

// AssignCardsPayload is the SEAT-scoped "assign-cards" payload sent
// once per seat at deal time.
type AssignCardsPayload struct {
	Cards []card.ID
}

// HandInPlayPayload is the ALL-scoped "hand-in-play" payload.
type HandInPlayPayload struct {
	Hand string
}

// AlertPayload is the SEAT-scoped "alert" payload: a user-correctable
// failure (spec.md §7) rendered as a message for the offending seat.
type AlertPayload struct {
	Alert string
}

// MessagePayload is the ALL-scoped "message" payload: server narration
// of plays, passes, round wins, and finishing positions (spec.md §6).
type MessagePayload struct {
	Msg string
}
