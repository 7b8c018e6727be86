// Package deal defines the external collaborator spec.md §1 calls out
// as out of scope: "deck shuffling/dealing randomness." The match
// engine consumes a Dealer; it never shuffles a deck itself.
package deal

import (
	"math/rand"
	"sort"
	"time"

	"github.com/alexstennet/presidents/internal/card"
)

// Dealer produces a fresh shuffled deal: four 13-card hands, each
// sorted ascending, indexed by seat.
type Dealer interface {
	Deal() [4][13]card.ID
}

// MathRandDealer is the default Dealer, grounded on the teacher's
// domain.NewDeck/domain.ShuffleDeck (generalized from a struct-card
// deck to spec.md's integer card ids).
type MathRandDealer struct {
	rng *rand.Rand
}

// NewMathRandDealer returns a Dealer seeded from rng, or a
// time-seeded default if rng is nil.
func NewMathRandDealer(rng *rand.Rand) *MathRandDealer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MathRandDealer{rng: rng}
}

// Deal shuffles a fresh 52-card deck and splits it into four sorted
// 13-card hands.
func (d *MathRandDealer) Deal() [4][13]card.ID {
	deck := make([]card.ID, 0, card.Count)
	for c := card.Min; c <= card.Max; c++ {
		deck = append(deck, c)
	}
	d.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	var hands [4][13]card.ID
	for seat := 0; seat < 4; seat++ {
		copy(hands[seat][:], deck[seat*13:seat*13+13])
		h := hands[seat][:]
		sort.Slice(h, func(i, j int) bool { return h[i] < h[j] })
	}
	return hands
}
