package mines

import (
	"log/slog"
	"math/rand/v2"
)

// seed places the board's mines uniformly at random, none of which is at
// first or adjacent to it, then computes every clear cell's count.
func (b *Board) seed(first int, r *rand.Rand) {
	excluded := make([]bool, len(b.cells))
	excluded[first] = true
	for j := range b.neighborsOf(first) {
		excluded[j] = true
	}

	/*
	 * Write down the list of possible mine locations, then pick n off the
	 * list at random.
	 */
	candidates := make([]int, 0, len(b.cells))
	for i := range b.cells {
		if !excluded[i] {
			candidates = append(candidates, i)
		}
	}

	if b.mineCount > len(candidates) {
		Log.Warn(
			"not enough room for mines outside the first dig",
			slog.Int("requested", b.mineCount),
			slog.Int("placed", len(candidates)),
		)
		b.mineCount = len(candidates)
	}

	k := len(candidates)
	for range b.mineCount {
		i := r.IntN(k)
		b.cells[candidates[i]].Kind = Mine
		k--
		candidates[i] = candidates[k]
	}

	b.countAdjacent()
	b.seeded = true
}

func (b *Board) countAdjacent() {
	for i := range b.cells {
		if b.cells[i].Kind.IsMine() {
			continue
		}
		n := 0
		for j := range b.neighborsOf(i) {
			if b.cells[j].Kind.IsMine() {
				n++
			}
		}
		b.cells[i].Kind = Clear(n)
	}
}

type digResult struct {
	cleared  int // clear cells newly cleared
	exploded bool
}

// dig opens an untouched cell (flood-filling zero regions) or chords a cleared
// one. notify is called once for every cell whose interaction changes.
func (b *Board) dig(i int, notify func(int)) digResult {
	var res digResult
	switch b.cells[i].Interaction {
	case Untouched:
		b.flood(i, notify, &res)
	case Cleared:
		b.chord(i, notify, &res)
	}
	return res
}

func (b *Board) flood(start int, notify func(int), res *digResult) {
	todo := []int{start}
	for len(todo) > 0 {
		i := todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		c := &b.cells[i]
		if c.Interaction != Untouched {
			continue
		}
		c.Interaction = Cleared
		notify(i)

		if c.Kind.IsMine() {
			res.exploded = true
			return
		}
		res.cleared++

		if c.Kind == Clear(0) {
			for j := range b.neighborsOf(i) {
				if b.cells[j].Interaction == Untouched {
					todo = append(todo, j)
				}
			}
		}
	}
}

// chord digs every untouched neighbour of a cleared cell once the number of
// flags around it matches its count.
func (b *Board) chord(i int, notify func(int), res *digResult) {
	k := b.cells[i].Kind
	if k.IsMine() {
		return
	}

	flags := 0
	untouched := make([]int, 0, 8)
	for j := range b.neighborsOf(i) {
		switch b.cells[j].Interaction {
		case Flagged:
			flags++
		case Untouched:
			untouched = append(untouched, j)
		}
	}
	if flags != k.Count() {
		return
	}

	for _, j := range untouched {
		b.flood(j, notify, res)
		if res.exploded {
			return
		}
	}
}

// toggleFlag reports whether the cell changed. Cleared cells never do.
func (b *Board) toggleFlag(i int) bool {
	c := &b.cells[i]
	switch c.Interaction {
	case Untouched:
		c.Interaction = Flagged
	case Flagged:
		c.Interaction = Untouched
	default:
		return false
	}
	return true
}

func (b *Board) flagRemaining(notify func(int)) {
	for i := range b.cells {
		if b.cells[i].Interaction == Untouched {
			b.cells[i].Interaction = Flagged
			notify(i)
		}
	}
}
