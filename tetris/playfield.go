package tetris

import "strings"

// Playfield dimensions. The playfield is two rows taller than what is
// rendered: rows 20 and 21 are a hidden staging area where pieces spawn.
const (
	Width         = 10
	Height        = 22
	VisibleHeight = 20
)

// SlotState tags what a playfield slot holds. Comparisons care about the
// tag only; the shape payload is identity for rendering.
type SlotState int

const (
	SlotEmpty SlotState = iota
	// SlotOccupied marks slots under the active tetromino. Transient.
	SlotOccupied
	// SlotLocked marks permanently committed blocks. Only a completed
	// line sweep removes them.
	SlotLocked
	// SlotGhost marks the drop-preview overlay. Transient, never
	// collides.
	SlotGhost
)

// Slot is one cell of the playfield.
type Slot struct {
	State SlotState
	Shape Shape
}

// Direction is a one-slot translation of the active tetromino.
type Direction int

const (
	MoveLeft Direction = iota
	MoveRight
	MoveDown
)

func (d Direction) translation() Vec {
	switch d {
	case MoveLeft:
		return Vec{-1, 0}
	case MoveRight:
		return Vec{1, 0}
	default:
		return Vec{0, -1}
	}
}

var down = Vec{0, -1}

// Playfield is the 10x22 grid of slots plus the active tetromino and its
// ghost. The active tetromino is owned by the playfield while in play;
// callers get copies.
type Playfield struct {
	slots  [Height][Width]Slot
	active *Tetromino
	ghost  *Tetromino
}

func NewPlayfield() *Playfield {
	return &Playfield{}
}

// SetActive places a tetromino's blocks as occupied and recomputes the
// ghost. It returns false if the starting position already collides,
// which signals game over; the blocks are written into the grid either
// way, so the caller must check the result rather than assume the
// placement was rejected.
func (p *Playfield) SetActive(t *Tetromino) bool {
	ok := !p.CheckCollision(t.PlayfieldSlots())
	p.setSlots(t.PlayfieldSlots(), Slot{State: SlotOccupied, Shape: t.Shape})
	p.active = t
	p.updateGhost()
	return ok
}

// TakeActive removes and returns the active tetromino without locking
// it, clearing its slots. The returned piece is reset to its spawn
// state, ready for the hold slot. Returns nil if nothing is active.
func (p *Playfield) TakeActive() *Tetromino {
	if p.active == nil {
		return nil
	}
	p.setSlots(p.active.PlayfieldSlots(), Slot{})
	taken := p.active.reset()
	p.active = nil
	p.updateGhost()
	return taken
}

// ReadyForNext reports whether the playfield needs the next tetromino.
func (p *Playfield) ReadyForNext() bool {
	return p.active == nil
}

// Active returns a copy of the active tetromino, or nil.
func (p *Playfield) Active() *Tetromino {
	return p.active.copy()
}

// Ghost returns a copy of the ghost tetromino, or nil.
func (p *Playfield) Ghost() *Tetromino {
	return p.ghost.copy()
}

// ActiveCanFall reports whether the active tetromino can move one row
// down without colliding.
func (p *Playfield) ActiveCanFall() bool {
	if p.active == nil {
		return false
	}
	return !p.CheckCollision(p.active.translated(down))
}

// CheckCollision reports whether any of the block positions is outside
// the horizontal bounds, below the floor, or on a locked slot. Rows at or
// above the top of the grid do not collide: pieces may extend above the
// staging area, and locking up there is the lifecycle's game-over check,
// not a collision.
func (p *Playfield) CheckCollision(blocks [4]Vec) bool {
	for _, b := range blocks {
		if b.X < 0 || b.X >= Width || b.Y < 0 {
			return true
		}
		if b.Y >= Height {
			continue
		}
		if p.slots[b.Y][b.X].State == SlotLocked {
			return true
		}
	}
	return false
}

// TranslateActive attempts to move the active tetromino one slot. On
// collision nothing is mutated and it returns false.
func (p *Playfield) TranslateActive(d Direction) bool {
	if p.active == nil {
		return false
	}
	if p.CheckCollision(p.active.translated(d.translation())) {
		return false
	}
	p.setSlots(p.active.PlayfieldSlots(), Slot{})
	p.active.translate(d.translation())
	p.setSlots(p.active.PlayfieldSlots(), Slot{State: SlotOccupied, Shape: p.active.Shape})
	p.updateGhost()
	return true
}

// RotateActive attempts to rotate the active tetromino in place. There
// is no kick search: if the rotated offsets collide the rotation is
// rejected and nothing is mutated.
func (p *Playfield) RotateActive(r Rotation) bool {
	if p.active == nil {
		return false
	}
	if p.CheckCollision(p.active.rotated(r)) {
		return false
	}
	p.setSlots(p.active.PlayfieldSlots(), Slot{})
	p.active.rotate(r)
	p.setSlots(p.active.PlayfieldSlots(), Slot{State: SlotOccupied, Shape: p.active.Shape})
	p.updateGhost()
	return true
}

// HardDropActive moves the active tetromino to the lowest position it
// can occupy without locking it.
func (p *Playfield) HardDropActive() {
	if p.active == nil {
		return
	}
	delta := p.hardDropTranslation(p.active)
	p.setSlots(p.active.PlayfieldSlots(), Slot{})
	p.active.translate(delta)
	p.setSlots(p.active.PlayfieldSlots(), Slot{State: SlotOccupied, Shape: p.active.Shape})
	p.updateGhost()
}

// LockActive converts the active tetromino's slots to locked and removes
// it from play, along with its ghost.
func (p *Playfield) LockActive() {
	if p.active == nil {
		return
	}
	p.setSlots(p.active.PlayfieldSlots(), Slot{State: SlotLocked, Shape: p.active.Shape})
	p.active = nil
	p.updateGhost()
}

// CompleteLines returns the rows where every slot is locked, in
// bottom-to-top order.
func (p *Playfield) CompleteLines() []int {
	var complete []int
rows:
	for y := range Height {
		for x := range Width {
			if p.slots[y][x].State != SlotLocked {
				continue rows
			}
		}
		complete = append(complete, y)
	}
	return complete
}

// ClearCompletedLines empties every completed row and drops the rows
// above it into place, then returns the cleared row indices in ascending
// order. Compaction works from a snapshot of the pre-clear grid: each
// surviving row is copied straight to its final position, rows with no
// surviving source above the top become empty. Calling it again without
// new locks is a no-op.
func (p *Playfield) ClearCompletedLines() []int {
	completed := p.CompleteLines()
	if len(completed) == 0 {
		return completed
	}

	snapshot := p.slots
	cleared := make(map[int]bool, len(completed))
	for _, y := range completed {
		cleared[y] = true
	}

	src := 0
	for dst := range Height {
		for cleared[src] {
			src++
		}
		if src < Height {
			p.slots[dst] = snapshot[src]
		} else {
			p.slots[dst] = [Width]Slot{}
		}
		src++
	}

	p.updateGhost()
	return completed
}

// hardDropTranslation probes downward one row at a time from the current
// position and returns the last translation that does not collide.
func (p *Playfield) hardDropTranslation(t *Tetromino) Vec {
	translation := down
	if p.CheckCollision(t.translated(translation)) {
		return Vec{}
	}
	for {
		good := translation
		translation = translation.add(down)
		if p.CheckCollision(t.translated(translation)) {
			return good
		}
	}
}

// updateGhost re-projects the ghost under the active tetromino. The
// ghost always mirrors the active piece's offsets and facing, translated
// by the hard-drop delta; it never overwrites occupied slots and is
// removed entirely when no piece is active.
func (p *Playfield) updateGhost() {
	if p.ghost != nil {
		for _, b := range p.ghost.PlayfieldSlots() {
			if b.Y >= Height {
				continue
			}
			if p.slots[b.Y][b.X].State == SlotGhost {
				p.slots[b.Y][b.X] = Slot{}
			}
		}
	}
	if p.active == nil {
		p.ghost = nil
		return
	}

	ghost := p.active.copy()
	ghost.translate(p.hardDropTranslation(p.active))
	for _, b := range ghost.PlayfieldSlots() {
		if b.Y >= Height {
			continue
		}
		if p.slots[b.Y][b.X].State != SlotOccupied {
			p.slots[b.Y][b.X] = Slot{State: SlotGhost, Shape: ghost.Shape}
		}
	}
	p.ghost = ghost
}

// String renders the slot states top-down for debugging, with a ruler
// under the hidden staging rows.
func (p *Playfield) String() string {
	var sb strings.Builder
	for y := Height - 1; y >= 0; y-- {
		if y == VisibleHeight-1 {
			sb.WriteString(strings.Repeat("-", Width*2) + "\n")
		}
		for x := range Width {
			switch p.slots[y][x].State {
			case SlotEmpty:
				sb.WriteString("  ")
			case SlotOccupied:
				sb.WriteString(" #")
			case SlotLocked:
				sb.WriteString(" @")
			case SlotGhost:
				sb.WriteString(" %")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// setSlots writes state into the four block positions. Blocks above the
// top of the grid have no slot to write; they live only in the piece's
// own coordinates.
func (p *Playfield) setSlots(blocks [4]Vec, s Slot) {
	for _, b := range blocks {
		if b.Y >= Height {
			continue
		}
		p.slots[b.Y][b.X] = s
	}
}
