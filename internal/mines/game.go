package mines

import (
	"context"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

var Log *slog.Logger = slog.Default()

const DefaultGraceWindow = 1500 * time.Millisecond

type Status uint8

const (
	Idle Status = iota
	Started
	GameOver
	Victory
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Started:
		return "started"
	case GameOver:
		return "game_over"
	case Victory:
		return "victory"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Status) Terminal() bool {
	return s == GameOver || s == Victory
}

// RoundState is published to the round observer on every status-relevant
// change: start, progress, tick, end of round, end of grace window, reset.
type RoundState struct {
	Round          int    `json:"round"`
	Status         Status `json:"status"`
	Cleared        int    `json:"cleared"`
	Elapsed        int    `json:"elapsed_seconds"`
	NewGameEnabled bool   `json:"new_game_enabled"`
}

type RoundObserver func(RoundState)

// Completion is submitted once per won round, for score keeping.
type Completion struct {
	Username   string     `json:"username"`
	Elapsed    int        `json:"elapsed_seconds"`
	Difficulty Difficulty `json:"difficulty"`
	Size       Size       `json:"size"`
}

// CompletionSink receives won rounds. Submit runs on its own goroutine and
// its outcome is never awaited or retried by the game.
type CompletionSink interface {
	Submit(ctx context.Context, c Completion)
}

type CompletionFunc func(ctx context.Context, c Completion)

func (f CompletionFunc) Submit(ctx context.Context, c Completion) {
	f(ctx, c)
}

// TickSource starts a periodic tick for one round. stop is called when the
// round's timer goroutine exits.
type TickSource func() (ticks <-chan time.Time, stop func())

func WallClock(period time.Duration) TickSource {
	return func() (<-chan time.Time, func()) {
		t := time.NewTicker(period)
		return t.C, t.Stop
	}
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

type Option func(*Game)

func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rnd = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

func WithTicks(ticks TickSource) Option {
	return func(g *Game) { g.ticks = ticks }
}

// WithGraceWindow sets how long new games stay disabled after a round ends.
func WithGraceWindow(d time.Duration) Option {
	return func(g *Game) { g.grace = d }
}

func WithRoundObserver(fn RoundObserver) Option {
	return func(g *Game) { g.onRound = fn }
}

func WithCompletionSink(sink CompletionSink) Option {
	return func(g *Game) { g.sink = sink }
}

// WithDimensions overrides the size and difficulty policy.
func WithDimensions(rows, columns, mineCount int) Option {
	return func(g *Game) { g.dims = &[3]int{rows, columns, mineCount} }
}

// Game is one player's minefield across rounds. Gestures are serialized by an
// internal lock; observers are called synchronously while it is held and
// must not call back into the Game.
type Game struct {
	mu sync.Mutex

	params Params
	board  *Board
	obs    *observers

	status         Status
	round          int
	cleared        int
	elapsed        int
	newGameEnabled bool

	rnd     *rand.Rand
	logger  *slog.Logger
	ticks   TickSource
	grace   time.Duration
	onRound RoundObserver
	sink    CompletionSink
	dims    *[3]int

	ctx        context.Context
	cancel     context.CancelFunc
	stopTimer  context.CancelFunc
	graceTimer *time.Timer
	wg         sync.WaitGroup
}

func New(params Params, opts ...Option) (*Game, error) {
	if int(params.Difficulty) >= len(difficultyNames) || int(params.Size) >= len(sizeNames) {
		return nil, ErrInvalidParams
	}

	g := &Game{
		params:         params,
		round:          1,
		newGameEnabled: true,
		logger:         Log,
		ticks:          WallClock(time.Second),
		grace:          DefaultGraceWindow,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = createRand()
	}

	rows, columns, mineCount := params.Dimensions()
	if g.dims != nil {
		rows, columns, mineCount = g.dims[0], g.dims[1], g.dims[2]
	}
	board, err := NewBoard(rows, columns, mineCount)
	if err != nil {
		return nil, err
	}
	g.board = board
	g.obs = newObservers(rows * columns)

	if g.params.Username == "" {
		g.params.SetUsername("", g.rnd)
	}

	g.ctx, g.cancel = context.WithCancel(context.Background())
	return g, nil
}

func (g *Game) Params() Params {
	return g.params
}

func (g *Game) Rows() int {
	return g.board.Rows()
}

func (g *Game) Columns() int {
	return g.board.Columns()
}

// Observe registers fn for the cell at (row, column), replacing any previous
// observer of that cell.
func (g *Game) Observe(row, column int, fn CellObserver) (Handle, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.board.Index(row, column)
	if !ok || fn == nil {
		return 0, false
	}
	return g.obs.register(i, fn), true
}

// ObserveAll registers fn for every cell of the board.
func (g *Game) ObserveAll(fn CellObserver) []Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	handles := make([]Handle, len(g.board.cells))
	for i := range g.board.cells {
		handles[i] = g.obs.register(i, fn)
	}
	return handles
}

func (g *Game) Unobserve(h Handle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.obs.unregister(h)
}

// panics [AssertionError]
func (g *Game) notifyCell(i int) {
	p := g.board.Point(i)
	fn, ok := g.obs.lookup(i)
	if !ok {
		panic(assertionf("no observer registered for cell (%d, %d)", p.Row, p.Column))
	}
	c := g.board.cells[i]
	fn(p.Row, p.Column, c.Interaction, c.Kind)
}

func (g *Game) state() RoundState {
	return RoundState{
		Round:          g.round,
		Status:         g.status,
		Cleared:        g.cleared,
		Elapsed:        g.elapsed,
		NewGameEnabled: g.newGameEnabled,
	}
}

func (g *Game) State() RoundState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) publish() {
	if g.onRound != nil {
		g.onRound(g.state())
	}
}

func (g *Game) Cell(row, column int) (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Cell(row, column)
}

// Mines lists mine positions of the current round, for loss animations.
func (g *Game) Mines() []Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Mines()
}

func (g *Game) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.String()
}

// Dig opens the cell at (row, column), chords it if it is already cleared.
// The first dig of a round places the mines.
//
// panics [AssertionError]
func (g *Game) Dig(row, column int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status.Terminal() {
		return
	}
	i, ok := g.board.Index(row, column)
	if !ok {
		return
	}

	started := false
	if g.status == Idle {
		g.start(i)
		started = true
	}

	res := g.board.dig(i, g.notifyCell)
	g.cleared += res.cleared

	g.logger.Debug("dig",
		slog.Int("row", row),
		slog.Int("column", column),
		slog.Int("cleared", res.cleared),
		slog.Bool("exploded", res.exploded),
	)

	switch {
	case res.exploded:
		g.lose()
	case g.cleared == g.board.SafeCells():
		g.win()
	case started || res.cleared > 0:
		g.publish()
	}
}

// Flag toggles a flag on an untouched or flagged cell.
//
// panics [AssertionError]
func (g *Game) Flag(row, column int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status.Terminal() {
		return
	}
	i, ok := g.board.Index(row, column)
	if !ok {
		return
	}
	if g.board.toggleFlag(i) {
		g.notifyCell(i)
	}
}

// Reset discards the current round and returns to [Idle] with a fresh,
// unseeded board.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.halt()
	if g.graceTimer != nil {
		g.graceTimer.Stop()
		g.graceTimer = nil
	}

	g.board.reset()
	g.status = Idle
	g.cleared = 0
	g.elapsed = 0
	g.round++
	g.newGameEnabled = true

	for i := range g.board.cells {
		if fn, ok := g.obs.lookup(i); ok {
			p := g.board.Point(i)
			fn(p.Row, p.Column, Untouched, Clear(0))
		}
	}

	g.logger.Debug("round reset", slog.Int("round", g.round))
	g.publish()
}

// Close stops the timer and grace window and waits for pending completion
// submissions. Sinks are handed a context that Close cancels.
func (g *Game) Close() {
	g.mu.Lock()
	g.cancel()
	g.halt()
	if g.graceTimer != nil {
		g.graceTimer.Stop()
		g.graceTimer = nil
	}
	g.mu.Unlock()

	g.wg.Wait()
}

func (g *Game) start(first int) {
	if !g.board.seeded {
		g.board.seed(first, g.rnd)
	}
	g.status = Started
	g.elapsed = 0

	ctx, cancel := context.WithCancel(g.ctx)
	g.stopTimer = cancel
	ticks, stop := g.ticks()
	g.wg.Add(1)
	go g.runTimer(ctx, g.round, ticks, stop)

	g.logger.Debug("round started",
		slog.Int("round", g.round),
		slog.Int("rows", g.board.Rows()),
		slog.Int("columns", g.board.Columns()),
		slog.Int("mines", g.board.MineCount()),
	)
}

// halt stops the round's timer. Safe to call when none is running.
func (g *Game) halt() {
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
}

func (g *Game) running(round int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round == round && g.status == Started
}

func (g *Game) runTimer(ctx context.Context, round int, ticks <-chan time.Time, stop func()) {
	defer g.wg.Done()
	defer stop()

	for {
		if !g.running(round) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticks:
		}

		g.mu.Lock()
		if g.round == round && g.status == Started {
			g.elapsed++
			g.publish()
		}
		g.mu.Unlock()
	}
}

func (g *Game) endRound() {
	g.halt()
	if g.grace <= 0 {
		return
	}
	g.newGameEnabled = false
	round := g.round
	g.graceTimer = time.AfterFunc(g.grace, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.round != round || g.newGameEnabled {
			return
		}
		g.newGameEnabled = true
		g.publish()
	})
}

func (g *Game) lose() {
	g.status = GameOver
	g.endRound()

	g.logger.Info("round lost",
		slog.Int("round", g.round),
		slog.Int("elapsed", g.elapsed),
		slog.Int("cleared", g.cleared),
	)
	g.publish()
}

func (g *Game) win() {
	g.status = Victory
	g.endRound()
	g.board.flagRemaining(g.notifyCell)

	c := Completion{
		Username:   g.params.Username,
		Elapsed:    g.elapsed,
		Difficulty: g.params.Difficulty,
		Size:       g.params.Size,
	}
	g.logger.Info("round won",
		slog.Int("round", g.round),
		slog.Int("elapsed", g.elapsed),
		slog.String("username", c.Username),
	)
	g.publish()

	if g.sink == nil {
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.sink.Submit(g.ctx, c)
	}()
}
