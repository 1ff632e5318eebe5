// Package tetris contains the gameplay core of a falling-block puzzle
// game: the playfield, piece geometry and rotation, the piece sequencer,
// and the timing-driven lifecycle that moves a piece from falling through
// lockdown to locked. The core is synchronous and single-threaded; a host
// loop feeds it a time delta once per frame plus discrete commands, and
// reads the query surface back to render.
package tetris

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

const (
	linesPerLevel     = 10
	lockdownDelay     = 0.5 // seconds a grounded piece waits before locking
	maxLockdownResets = 15

	gravityNumerator = 1.0
	gravityFactor    = 2.0
	minGravityDelay  = 0.001
)

// State tags the active piece's lifecycle. Locking is not a state: it is
// the transition that converts the piece to locked slots, observed as the
// absence of an active piece.
type State int

const (
	StateFalling State = iota
	StateLockdown
)

func (s State) String() string {
	if s == StateLockdown {
		return "lockdown"
	}
	return "falling"
}

// gravityDelay returns the seconds between gravity steps at a level:
//
//	         gravityNumerator
//	delay = ------------------------------
//	        ln(level + 1) * gravityFactor
//
// clamped to a small positive floor. The exact curve is a tunable; the
// contract is that it decreases with level and never reaches zero.
func gravityDelay(level int) float64 {
	return math.Max(gravityNumerator/(math.Log(float64(level+1))*gravityFactor), minGravityDelay)
}

func lineScore(cleared int) int {
	switch cleared {
	case 1:
		return 100
	case 2:
		return 300
	case 3:
		return 500
	case 4:
		return 800
	}
	panic(fmt.Sprintf("tetris: cleared %d lines at once", cleared))
}

// Game is one play session: the playfield, the piece stream, the
// lifecycle timers and the score/level progression. All methods must be
// called from a single goroutine; the host loop owns the only thread of
// control through the core.
type Game struct {
	playfield *Playfield
	bag       *sequencer
	seed      *uint64

	sessionID string
	state     State
	elapsed   float64
	gravity   float64
	resets    int

	next     *Tetromino
	held     *Tetromino
	holdUsed bool

	score int
	level int
	lines int
	over  bool
}

// New returns a game with an entropy-seeded piece sequence, ready for
// its first Advance call.
func New() *Game {
	g := &Game{}
	g.NewGame()
	return g
}

// NewSeeded returns a game whose piece sequence is reproducible from the
// seed, for testing. NewGame keeps the seed.
func NewSeeded(seed uint64) *Game {
	g := &Game{seed: &seed}
	g.NewGame()
	return g
}

// NewGame resets the whole session: empty playfield, level 1, zero
// score, fresh piece sequence and a new session ID.
func (g *Game) NewGame() {
	seed := g.seed
	bag := newSequencer(nil)
	if seed != nil {
		bag = newSeededSequencer(*seed)
	}
	*g = Game{
		playfield: NewPlayfield(),
		bag:       bag,
		seed:      seed,
		sessionID: uuid.NewString(),
		level:     1,
		gravity:   gravityDelay(1),
	}
	g.next = newTetromino(g.bag.Next())
}

// Advance drives the lifecycle by one time step. The host calls it once
// per frame with the elapsed seconds; a delta larger than the gravity
// delay performs several gravity steps rather than dropping time.
// Pausing is simply not calling Advance.
func (g *Game) Advance(dt float64) {
	if g.over {
		return
	}
	if g.playfield.ReadyForNext() {
		g.spawn(g.takeNext())
		if g.over {
			return
		}
	}

	switch g.state {
	case StateFalling:
		g.elapsed += dt
		for g.elapsed >= g.gravity {
			if !g.playfield.ActiveCanFall() {
				g.state = StateLockdown
				g.elapsed = 0
				break
			}
			g.playfield.TranslateActive(MoveDown)
			g.elapsed -= g.gravity
		}
	case StateLockdown:
		if g.playfield.ActiveCanFall() {
			// the player moved the piece onto an overhang; it falls
			// again, which itself burns a reset once resets have begun
			if g.resets > 0 {
				g.resets++
			}
			g.state = StateFalling
			g.elapsed = 0
			return
		}
		if g.elapsed+dt >= lockdownDelay || g.resets >= maxLockdownResets {
			g.lock()
			return
		}
		g.elapsed += dt
	}
}

// Move shifts the active piece one column. Returns whether the board
// changed.
func (g *Game) Move(d Direction) bool {
	if g.over {
		return false
	}
	if !g.playfield.TranslateActive(d) {
		return false
	}
	g.actionReset()
	return true
}

// SoftDrop moves the active piece one row down and, on success, restarts
// the gravity accumulator.
func (g *Game) SoftDrop() bool {
	if !g.Move(MoveDown) {
		return false
	}
	if g.state == StateFalling {
		g.elapsed = 0
	}
	return true
}

// Rotate turns the active piece. Returns whether the board changed.
func (g *Game) Rotate(r Rotation) bool {
	if g.over {
		return false
	}
	if !g.playfield.RotateActive(r) {
		return false
	}
	g.actionReset()
	return true
}

// HardDrop projects the active piece to its lowest legal position and
// locks it immediately, bypassing the lockdown delay.
func (g *Game) HardDrop() bool {
	if g.over || g.playfield.ReadyForNext() {
		return false
	}
	g.playfield.HardDropActive()
	g.lock()
	return true
}

// Hold exchanges the active piece with the held piece, or with the
// buffered next piece when nothing is held yet. Usable once per piece
// lifetime; locking re-arms it. Re-inserting onto a collision is game
// over.
func (g *Game) Hold() bool {
	if g.over || g.holdUsed || g.playfield.ReadyForNext() {
		return false
	}
	incoming := g.held
	if incoming == nil {
		incoming = g.takeNext()
	}
	g.held = g.playfield.TakeActive()
	g.holdUsed = true
	g.spawn(incoming)
	return true
}

// actionReset postpones an imminent lock after a successful move or
// rotation while grounded. The cap does not reject the action, it only
// stops further postponement: past it the next delay check locks.
func (g *Game) actionReset() {
	if g.state != StateLockdown {
		return
	}
	if g.resets < maxLockdownResets {
		g.resets++
		g.elapsed = 0
	}
}

// takeNext consumes the buffered next piece and refills the buffer from
// the sequencer.
func (g *Game) takeNext() *Tetromino {
	next := g.next
	g.next = newTetromino(g.bag.Next())
	return next
}

func (g *Game) spawn(t *Tetromino) {
	g.state = StateFalling
	g.elapsed = 0
	g.resets = 0
	if !g.playfield.SetActive(t) {
		g.over = true
	}
}

// lock commits the active piece, scores any completed lines and checks
// for level-up. Locking entirely inside the hidden staging rows is game
// over.
func (g *Game) lock() {
	active := g.playfield.Active()
	if active == nil {
		panic("tetris: locking with no active tetromino")
	}
	aboveVisible := true
	for _, b := range active.PlayfieldSlots() {
		if b.Y < VisibleHeight {
			aboveVisible = false
			break
		}
	}

	g.playfield.LockActive()
	g.holdUsed = false
	if aboveVisible {
		g.over = true
		return
	}

	cleared := len(g.playfield.ClearCompletedLines())
	if cleared == 0 {
		return
	}
	g.lines += cleared
	g.score += (g.level + 1) * lineScore(cleared)
	if g.lines >= (g.level+1)*linesPerLevel {
		g.level++
		g.gravity = gravityDelay(g.level)
	}
}

// Snapshot returns a copy of the slot grid for rendering.
func (g *Game) Snapshot() [Height][Width]Slot {
	return g.playfield.slots
}

// Active returns a copy of the piece in play, or nil between a lock and
// the next spawn.
func (g *Game) Active() *Tetromino { return g.playfield.Active() }

// Ghost returns a copy of the drop-preview piece, or nil.
func (g *Game) Ghost() *Tetromino { return g.playfield.Ghost() }

// Held returns a copy of the held piece, or nil.
func (g *Game) Held() *Tetromino { return g.held.copy() }

// Next returns a copy of the buffered next piece.
func (g *Game) Next() *Tetromino { return g.next.copy() }

// State returns the lifecycle tag of the active piece, for UI feedback
// such as flashing during lockdown.
func (g *Game) State() State { return g.state }

func (g *Game) Score() int { return g.score }

func (g *Game) Level() int { return g.level }

// Lines returns the cumulative number of cleared lines.
func (g *Game) Lines() int { return g.lines }

// Over reports whether the session has ended.
func (g *Game) Over() bool { return g.over }

// SessionID identifies this session, e.g. for score records and logs.
func (g *Game) SessionID() string { return g.sessionID }
