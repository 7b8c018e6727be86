package hand

import (
	"sort"
	"sync"

	"github.com/alexstennet/presidents/internal/card"
)

// table maps every canonical 5-slot tuple to the class it belongs to.
// Built once, by ensureTable, on first use (or by PrecomputeTable):
// classification is a lookup, never a re-derivation.
var table map[[5]card.ID]Kind

var tableOnce sync.Once

func ensureTable() {
	tableOnce.Do(buildTable)
}

// PrecomputeTable forces the classification table to build now instead
// of lazily on the first classification (reclassify, run by the first
// Hand.Add or Hand.Remove). internal/config's
// PrecomputeTableAtStartup toggles whether a caller does this at
// process start; leaving it unset just defers the (sub-second) build
// to the first hand classified.
func PrecomputeTable() {
	ensureTable()
}

// ranksTable[r] holds the 4 card ids of rank r (0..12), ascending by suit.
var ranksTable [13][4]card.ID

func init() {
	for r := 0; r < 13; r++ {
		for s := 0; s < 4; s++ {
			ranksTable[r][s] = card.ID(r*4 + s + 1)
		}
	}
}

func buildTable() {
	table = make(map[[5]card.ID]Kind, 13000)

	buildSingles()
	buildDoublesAndTriples()
	buildFullHouses()
	buildBombs()
	buildStraights()
}

func buildSingles() {
	for c := card.Min; c <= card.Max; c++ {
		table[canon([]card.ID{c})] = Single
	}
}

func buildDoublesAndTriples() {
	for r := 0; r < 13; r++ {
		cs := ranksTable[r]
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				table[canon([]card.ID{cs[i], cs[j]})] = Double
				for k := j + 1; k < 4; k++ {
					table[canon([]card.ID{cs[i], cs[j], cs[k]})] = Triple
				}
			}
		}
	}
}

// buildFullHouses enumerates every pair-rank/triple-rank combination.
// Because card ids order by rank before suit, the pair's two cards and
// the triple's three cards never interleave once sorted: whichever
// rank is lower occupies the low end of the canonical tuple as a
// contiguous block. That guarantees slot 2 always falls inside the
// triple's block, which is what the comparator (§4.1 rule 5) relies on.
func buildFullHouses() {
	for rp := 0; rp < 13; rp++ {
		for rt := 0; rt < 13; rt++ {
			if rp == rt {
				continue
			}
			pairCs := ranksTable[rp]
			tripCs := ranksTable[rt]
			for i := 0; i < 4; i++ {
				for j := i + 1; j < 4; j++ {
					pair := []card.ID{pairCs[i], pairCs[j]}
					for a := 0; a < 4; a++ {
						for b := a + 1; b < 4; b++ {
							for c := b + 1; c < 4; c++ {
								all := append(append([]card.ID{}, pair...), tripCs[a], tripCs[b], tripCs[c])
								table[canon(all)] = FullHouse
							}
						}
					}
				}
			}
		}
	}
}

func buildBombs() {
	for rq := 0; rq < 13; rq++ {
		for rk := 0; rk < 13; rk++ {
			if rq == rk {
				continue
			}
			quad := ranksTable[rq]
			kickerCs := ranksTable[rk]
			for k := 0; k < 4; k++ {
				all := []card.ID{quad[0], quad[1], quad[2], quad[3], kickerCs[k]}
				table[canon(all)] = Bomb
			}
		}
	}
}

// buildStraights enumerates every 5-consecutive-rank run that does not
// reach rank 2 (index 12), with every choice of suit per rank.
// Straights do not wrap: spec.md fixes this as a definition, not an
// inference, because the source left straight population stubbed out.
func buildStraights() {
	for start := 0; start+4 <= 11; start++ {
		r0, r1, r2, r3, r4 := ranksTable[start], ranksTable[start+1], ranksTable[start+2], ranksTable[start+3], ranksTable[start+4]
		for s0 := 0; s0 < 4; s0++ {
			for s1 := 0; s1 < 4; s1++ {
				for s2 := 0; s2 < 4; s2++ {
					for s3 := 0; s3 < 4; s3++ {
						for s4 := 0; s4 < 4; s4++ {
							cards := []card.ID{r0[s0], r1[s1], r2[s2], r3[s3], r4[s4]}
							table[canon(cards)] = Straight
						}
					}
				}
			}
		}
	}
}

// canon sorts cards ascending and zero-pads the front to a 5-slot tuple.
func canon(cards []card.ID) [5]card.ID {
	sorted := append([]card.ID{}, cards...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var slots [5]card.ID
	pad := len(slots) - len(sorted)
	for i, c := range sorted {
		slots[pad+i] = c
	}
	return slots
}
