package mines

import (
	"maps"
	"math/rand/v2"
	"slices"
	"testing"
)

func countMinesAround(b *Board, i int) int {
	p := b.Point(i)
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := p.Row+dr, p.Column+dc
			if r >= 0 && r < b.rows && c >= 0 && c < b.columns &&
				b.cells[r*b.columns+c].Kind.IsMine() {
				n++
			}
		}
	}
	return n
}

func TestSeedKeepsFirstDigSafe(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	t.Parallel()

	tests := []struct {
		name   string
		params Params
	}{
		{"small easy", Params{Difficulty: Easy, Size: Small}},
		{"small hard", Params{Difficulty: Hard, Size: Small}},
		{"medium normal", Params{Difficulty: Normal, Size: Medium}},
		{"large hard", Params{Difficulty: Hard, Size: Large}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := rand.New(rand.NewPCG(1, 2))
			rows, columns, mineCount := test.params.Dimensions()
			for sr := range rows {
				for sc := range columns {
					b, err := NewBoard(rows, columns, mineCount)
					if err != nil {
						t.Fatal(err)
					}
					first, _ := b.Index(sr, sc)
					b.seed(first, r)

					if have := len(b.Mines()); have != mineCount {
						t.Fatalf("@ %d:%d have %d mines, want %d", sr, sc, have, mineCount)
					}
					if b.cells[first].Kind != Clear(0) {
						t.Fatalf("@ %d:%d first cell is %v", sr, sc, b.cells[first].Kind)
					}
					for j := range b.Neighbors(sr, sc) {
						if b.cells[j].Kind.IsMine() {
							t.Fatalf("@ %d:%d neighbour %v is a mine", sr, sc, b.Point(j))
						}
					}
					for i, c := range b.cells {
						if !c.Kind.IsMine() && c.Kind.Count() != countMinesAround(b, i) {
							t.Fatalf("@ %d:%d cell %v has count %d, want %d",
								sr, sc, b.Point(i), c.Kind.Count(), countMinesAround(b, i))
						}
						if c.Interaction != Untouched {
							t.Fatalf("seeding touched cell %v", b.Point(i))
						}
					}
				}
			}
		})
	}
}

func TestSeedCornerExclusion(t *testing.T) {
	excluded := []Point{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	allowed := []Point{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {2, 0}}

	r := rand.New(rand.NewPCG(1, 2))
	seen := make(map[Point]bool)
	for range 200 {
		b, err := NewBoard(3, 3, 1)
		if err != nil {
			t.Fatal(err)
		}
		b.seed(8, r)
		mines := b.Mines()
		if len(mines) != 1 {
			t.Fatalf("have %d mines, want 1", len(mines))
		}
		if slices.Contains(excluded, mines[0]) {
			t.Fatalf("mine placed inside the first dig's neighbourhood: %v", mines[0])
		}
		seen[mines[0]] = true
	}
	if !seen[Point{0, 0}] {
		t.Error("(0, 0) never received the mine")
	}

	// with as many mines as allowed cells, (0, 0) must be one of them
	b, err := NewBoard(3, 3, len(allowed))
	if err != nil {
		t.Fatal(err)
	}
	b.seed(8, r)
	mines := b.Mines()
	slices.SortFunc(mines, func(a, b Point) int { return (a.Row*3 + a.Column) - (b.Row*3 + b.Column) })
	if !slices.Equal(mines, allowed) {
		t.Fatalf("have %v, want %v", mines, allowed)
	}
	if have := b.cells[0].Kind; have != Mine {
		t.Fatalf("(0, 0) is %v", have)
	}
}

func TestSeedClampsCrowdedBoard(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	b, err := NewBoard(3, 3, 8)
	if err != nil {
		t.Fatal(err)
	}
	b.seed(4, r)
	if b.MineCount() != 0 || len(b.Mines()) != 0 {
		t.Fatalf("center dig on 3x3 leaves no room, have %d mines", b.MineCount())
	}
	if b.SafeCells() != 9 {
		t.Fatalf("have %d safe cells, want 9", b.SafeCells())
	}

	b, err = NewBoard(3, 3, 8)
	if err != nil {
		t.Fatal(err)
	}
	b.seed(0, r)
	if b.MineCount() != 5 || len(b.Mines()) != 5 {
		t.Fatalf("have %d mines, want 5", b.MineCount())
	}
}

// referenceReveal is the textbook recursive flood-fill.
func referenceReveal(b *Board, row, column int) {
	i, ok := b.Index(row, column)
	if !ok || b.cells[i].Interaction != Untouched {
		return
	}
	b.cells[i].Interaction = Cleared
	if b.cells[i].Kind == Clear(0) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				referenceReveal(b, row+dr, column+dc)
			}
		}
	}
}

func TestFloodMatchesRecursiveReveal(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		rows, columns := 5+r.IntN(20), 5+r.IntN(20)
		mineCount := r.IntN(rows * columns / 5)
		b, err := NewBoard(rows, columns, mineCount)
		if err != nil {
			t.Fatal(err)
		}
		sr, sc := r.IntN(rows), r.IntN(columns)
		first, _ := b.Index(sr, sc)
		b.seed(first, r)

		ref := &Board{rows: b.rows, columns: b.columns, cells: slices.Clone(b.cells)}
		referenceReveal(ref, sr, sc)

		notified := 0
		res := b.dig(first, func(int) { notified++ })
		if res.exploded {
			t.Fatal("first dig exploded")
		}

		have, want := clearedSet(b), clearedSet(ref)
		if !maps.Equal(have, want) {
			t.Fatalf("%dx%d @ %d:%d: flood cleared %d cells, recursion cleared %d",
				rows, columns, sr, sc, len(have), len(want))
		}
		if res.cleared != len(want) || notified != len(want) {
			t.Fatalf("have %d cleared and %d notifications, want %d",
				res.cleared, notified, len(want))
		}
	}
}

func TestFloodStopsAtNumbers(t *testing.T) {
	// . . . . *
	// . . . . .
	// . . . . .
	b := boardOf(t, 3, 5, Point{0, 4})
	res := b.dig(0, func(int) {})
	if res.exploded || res.cleared != 14 {
		t.Fatalf("have %+v", res)
	}
	if c := b.cells[4]; c.Interaction != Untouched {
		t.Fatalf("mine was touched: %+v", c)
	}

	// a second dig on any cleared cell in the region changes nothing
	for i := range clearedSet(b) {
		res := b.dig(i, func(j int) { t.Fatalf("unexpected notification for %v", b.Point(j)) })
		if res.cleared != 0 || res.exploded {
			t.Fatalf("re-dig of %v: have %+v", b.Point(i), res)
		}
	}
}

func TestFloodSkipsFlags(t *testing.T) {
	b := boardOf(t, 1, 5)
	b.toggleFlag(2)
	res := b.dig(0, func(int) {})
	if res.cleared != 2 {
		t.Fatalf("have %d cleared, want 2", res.cleared)
	}
	if b.cells[2].Interaction != Flagged || b.cells[3].Interaction != Untouched {
		t.Fatal("flood crossed a flag")
	}
}

func TestDigMine(t *testing.T) {
	b := boardOf(t, 2, 2, Point{1, 1})
	var notified []int
	res := b.dig(3, func(i int) { notified = append(notified, i) })
	if !res.exploded || res.cleared != 0 {
		t.Fatalf("have %+v", res)
	}
	if !slices.Equal(notified, []int{3}) {
		t.Fatalf("have notifications %v", notified)
	}
}

func TestChord(t *testing.T) {
	// * . *
	// . 2 .
	// . . .
	mines := []Point{{0, 0}, {0, 2}}
	center := 4

	t.Run("matching flags", func(t *testing.T) {
		b := boardOf(t, 3, 3, mines...)
		b.dig(center, func(int) {})
		b.toggleFlag(0)
		b.toggleFlag(2)

		var notified []int
		res := b.dig(center, func(i int) { notified = append(notified, i) })
		if res.exploded || res.cleared != 6 {
			t.Fatalf("have %+v", res)
		}
		slices.Sort(notified)
		if !slices.Equal(notified, []int{1, 3, 5, 6, 7, 8}) {
			t.Fatalf("have notifications %v", notified)
		}
	})

	t.Run("too few flags", func(t *testing.T) {
		b := boardOf(t, 3, 3, mines...)
		b.dig(center, func(int) {})
		b.toggleFlag(0)

		res := b.dig(center, func(i int) { t.Fatalf("unexpected notification for %v", b.Point(i)) })
		if res != (digResult{}) {
			t.Fatalf("have %+v", res)
		}
		if len(clearedSet(b)) != 1 {
			t.Fatal("chord with missing flags cleared cells")
		}
	})

	t.Run("wrong flag", func(t *testing.T) {
		b := boardOf(t, 3, 3, mines...)
		b.dig(center, func(int) {})
		b.toggleFlag(0)
		b.toggleFlag(1)

		res := b.dig(center, func(int) {})
		if !res.exploded {
			t.Fatal("chord with a misplaced flag must hit the unflagged mine")
		}
	})

	t.Run("chains into zero region", func(t *testing.T) {
		// * . . .
		// . 1 . .
		// . . . .
		b := boardOf(t, 3, 4, Point{0, 0})
		i, _ := b.Index(1, 1)
		b.dig(i, func(int) {})
		b.toggleFlag(0)
		res := b.dig(i, func(int) {})
		if res.exploded || res.cleared != 10 {
			t.Fatalf("have %+v", res)
		}
	})
}

func TestToggleFlag(t *testing.T) {
	b := boardOf(t, 1, 3)
	if !b.toggleFlag(0) || b.cells[0].Interaction != Flagged {
		t.Fatal("untouched cell did not become flagged")
	}
	if !b.toggleFlag(0) || b.cells[0].Interaction != Untouched {
		t.Fatal("flagged cell did not become untouched")
	}
	b.cells[1].Interaction = Cleared
	if b.toggleFlag(1) || b.cells[1].Interaction != Cleared {
		t.Fatal("cleared cell accepted a flag")
	}
}
