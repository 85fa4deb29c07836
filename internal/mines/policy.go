package mines

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidSize       = errors.New("invalid size")
	ErrInvalidParams     = errors.New("invalid game parameters")
)

type Difficulty uint8

const (
	Easy Difficulty = iota
	Normal
	Hard
)

var difficultyNames = [...]string{
	Easy:   "easy",
	Normal: "normal",
	Hard:   "hard",
}

// share of the board covered by mines
var difficultyDensity = [...]float64{
	Easy:   0.15,
	Normal: 0.25,
	Hard:   0.35,
}

func (d Difficulty) String() string {
	if int(d) < len(difficultyNames) {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", uint8(d))
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if int(d) >= len(difficultyNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	for d, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return Difficulty(d), nil
		}
	}
	return Easy, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

type Size uint8

const (
	Small Size = iota
	Medium
	Large
)

var sizeNames = [...]string{
	Small:  "small",
	Medium: "medium",
	Large:  "large",
}

// rows x columns
var sizeDimensions = [...][2]int{
	Small:  {8, 12},
	Medium: {10, 15},
	Large:  {12, 18},
}

func (s Size) String() string {
	if int(s) < len(sizeNames) {
		return sizeNames[s]
	}
	return fmt.Sprintf("Size(%d)", uint8(s))
}

func (s Size) MarshalText() ([]byte, error) {
	if int(s) >= len(sizeNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	v, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseSize(s string) (Size, error) {
	for size, name := range sizeNames {
		if strings.EqualFold(s, name) {
			return Size(size), nil
		}
	}
	return Small, fmt.Errorf("%w: %q", ErrInvalidSize, s)
}

// Dimensions returns the fixed board shape for a size. Unknown sizes fall
// back to [Small].
func Dimensions(size Size) (rows, columns int) {
	if int(size) >= len(sizeDimensions) {
		size = Small
	}
	d := sizeDimensions[size]
	return d[0], d[1]
}

// MineCount returns floor(totalCells * density(difficulty)).
func MineCount(totalCells int, difficulty Difficulty) int {
	if int(difficulty) >= len(difficultyDensity) {
		difficulty = Easy
	}
	return int(math.Floor(float64(totalCells) * difficultyDensity[difficulty]))
}

// Params are the validated construction inputs of a [Game].
type Params struct {
	Difficulty Difficulty
	Size       Size
	Username   string

	// StableUsername is false when Username was generated because the
	// caller did not supply one.
	StableUsername bool
}

// ParseParams validates raw difficulty and size names. An empty username is
// replaced with a random one.
func ParseParams(difficulty, size, username string, r *rand.Rand) (Params, error) {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	s, err := ParseSize(size)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	p := Params{Difficulty: d, Size: s}
	p.SetUsername(username, r)
	return p, nil
}

func (p *Params) SetUsername(username string, r *rand.Rand) {
	username = strings.TrimSpace(username)
	if username == "" {
		p.Username, p.StableUsername = RandomUsername(r), false
		return
	}
	p.Username, p.StableUsername = username, true
}

func (p Params) Dimensions() (rows, columns, mineCount int) {
	rows, columns = Dimensions(p.Size)
	return rows, columns, MineCount(rows*columns, p.Difficulty)
}
