package mines

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

var ErrBadBoard = errors.New("invalid board parameters")

type Interaction uint8

const (
	Untouched Interaction = iota
	Cleared
	Flagged
)

func (i Interaction) String() string {
	switch i {
	case Untouched:
		return "untouched"
	case Cleared:
		return "cleared"
	case Flagged:
		return "flagged"
	default:
		return "Interaction(" + strconv.Itoa(int(i)) + ")"
	}
}

// Kind is either [Mine] or the number of mines around a clear cell (0 to 8).
// The zero value is Clear(0).
type Kind int8

const Mine Kind = -1

func Clear(n int) Kind {
	return Kind(n)
}

func (k Kind) IsMine() bool {
	return k == Mine
}

// Count returns the adjacent mine count of a clear cell, -1 for a mine.
func (k Kind) Count() int {
	return int(k)
}

func (k Kind) String() string {
	if k == Mine {
		return "mine"
	}
	return "clear(" + strconv.Itoa(int(k)) + ")"
}

type Cell struct {
	Interaction Interaction
	Kind        Kind
}

type Point struct {
	Row, Column int
}

// compass order: NW, N, NE, W, E, SW, S, SE
var adjacent = [8]Point{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is a row-major minefield. Coordinates outside the board are never an
// error; they simply have no cell.
type Board struct {
	rows, columns int
	mineCount     int
	requested     int
	seeded        bool
	cells         []Cell
}

// NewBoard allocates an unseeded board. mineCount must leave at least one
// clear cell.
func NewBoard(rows, columns, mineCount int) (*Board, error) {
	if rows <= 0 || columns <= 0 || mineCount < 0 || mineCount >= rows*columns {
		return nil, fmt.Errorf(
			"%w (rows = %d, columns = %d, mines = %d)",
			ErrBadBoard, rows, columns, mineCount,
		)
	}
	return &Board{
		rows:      rows,
		columns:   columns,
		mineCount: mineCount,
		requested: mineCount,
		cells:     make([]Cell, rows*columns),
	}, nil
}

func (b *Board) Rows() int      { return b.rows }
func (b *Board) Columns() int   { return b.columns }
func (b *Board) MineCount() int { return b.mineCount }
func (b *Board) Seeded() bool   { return b.seeded }

// SafeCells is the number of cells that have to be cleared to win.
func (b *Board) SafeCells() int {
	return b.rows*b.columns - b.mineCount
}

func (b *Board) Index(row, column int) (int, bool) {
	if row < 0 || column < 0 || row >= b.rows || column >= b.columns {
		return 0, false
	}
	return row*b.columns + column, true
}

func (b *Board) Point(i int) Point {
	return Point{Row: i / b.columns, Column: i % b.columns}
}

func (b *Board) Cell(row, column int) (Cell, bool) {
	i, ok := b.Index(row, column)
	if !ok {
		return Cell{}, false
	}
	return b.cells[i], true
}

// Neighbors yields the indexes of the in-range cells around (row, column) in
// compass order. Edge and corner cells have fewer than 8.
func (b *Board) Neighbors(row, column int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, d := range adjacent {
			j, ok := b.Index(row+d.Row, column+d.Column)
			if !ok {
				continue
			}
			if !yield(j) {
				return
			}
		}
	}
}

func (b *Board) neighborsOf(i int) iter.Seq[int] {
	p := b.Point(i)
	return b.Neighbors(p.Row, p.Column)
}

// Mines lists mine positions. It is empty until the board is seeded.
func (b *Board) Mines() []Point {
	var ps []Point
	for i, c := range b.cells {
		if c.Kind.IsMine() {
			ps = append(ps, b.Point(i))
		}
	}
	return ps
}

func (b *Board) reset() {
	clear(b.cells)
	b.mineCount = b.requested
	b.seeded = false
}

// String renders the board for debugging: "." untouched, "F" flagged,
// "*" cleared mine, digits for cleared counts.
func (b *Board) String() string {
	var sb strings.Builder
	for row := range b.rows {
		for column := range b.columns {
			c := b.cells[row*b.columns+column]
			switch {
			case c.Interaction == Flagged:
				sb.WriteString("F")
			case c.Interaction == Untouched:
				sb.WriteString(".")
			case c.Kind.IsMine():
				sb.WriteString("*")
			default:
				sb.WriteString(strconv.Itoa(c.Kind.Count()))
			}
			if column < b.columns-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
