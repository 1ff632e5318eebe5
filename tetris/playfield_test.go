package tetris

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockSlot(p *Playfield, y, x int, s Shape) {
	p.slots[y][x] = Slot{State: SlotLocked, Shape: s}
}

func TestNewPlayfieldIsEmpty(t *testing.T) {
	p := NewPlayfield()
	for y := range Height {
		for x := range Width {
			assert.Equal(t, SlotEmpty, p.slots[y][x].State)
		}
	}
	assert.True(t, p.ReadyForNext())
	assert.Nil(t, p.Active())
	assert.Nil(t, p.Ghost())
}

func TestCheckCollision(t *testing.T) {
	tests := []struct {
		name   string
		blocks [4]Vec
		locked []Vec
		want   bool
	}{
		{
			name:   "clear field",
			blocks: [4]Vec{{3, 5}, {4, 5}, {5, 5}, {6, 5}},
		},
		{
			name:   "left of the wall",
			blocks: [4]Vec{{-1, 5}, {0, 5}, {1, 5}, {2, 5}},
			want:   true,
		},
		{
			name:   "right of the wall",
			blocks: [4]Vec{{7, 5}, {8, 5}, {9, 5}, {10, 5}},
			want:   true,
		},
		{
			name:   "below the floor",
			blocks: [4]Vec{{3, -1}, {3, 0}, {3, 1}, {3, 2}},
			want:   true,
		},
		{
			name: "above the top is not a collision",
			// pieces may poke out of the staging area; locking up
			// there is the lifecycle's problem
			blocks: [4]Vec{{3, 21}, {3, 22}, {3, 23}, {3, 24}},
		},
		{
			name:   "locked slot",
			blocks: [4]Vec{{3, 5}, {4, 5}, {5, 5}, {6, 5}},
			locked: []Vec{{5, 5}},
			want:   true,
		},
		{
			name:   "locked elsewhere",
			blocks: [4]Vec{{3, 5}, {4, 5}, {5, 5}, {6, 5}},
			locked: []Vec{{5, 6}, {2, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayfield()
			for _, l := range tt.locked {
				lockSlot(p, l.Y, l.X, J)
			}
			assert.Equal(t, tt.want, p.CheckCollision(tt.blocks))
		})
	}
}

func TestCheckCollisionRandomized(t *testing.T) {
	// collision iff a block is out of horizontal bounds, below the
	// floor, or on a locked slot; occupied and ghost slots never collide
	rng := rand.New(rand.NewPCG(9, 9))
	for range 500 {
		p := NewPlayfield()
		locked := map[Vec]bool{}
		for range 30 {
			v := Vec{rng.IntN(Width), rng.IntN(Height)}
			locked[v] = true
			lockSlot(p, v.Y, v.X, Shapes[rng.IntN(len(Shapes))])
		}
		for range 5 {
			v := Vec{rng.IntN(Width), rng.IntN(Height)}
			if !locked[v] {
				p.slots[v.Y][v.X] = Slot{State: SlotGhost, Shape: T}
			}
		}

		var blocks [4]Vec
		want := false
		for i := range blocks {
			b := Vec{rng.IntN(Width+4) - 2, rng.IntN(Height+4) - 2}
			blocks[i] = b
			if b.X < 0 || b.X >= Width || b.Y < 0 || (b.Y < Height && locked[b]) {
				want = true
			}
		}
		assert.Equal(t, want, p.CheckCollision(blocks), "blocks %v", blocks)
	}
}

func TestSetActive(t *testing.T) {
	t.Run("clear spawn", func(t *testing.T) {
		p := NewPlayfield()
		require.True(t, p.SetActive(newTetromino(J)))
		for _, b := range [4]Vec{{4, 20}, {3, 20}, {3, 21}, {5, 20}} {
			assert.Equal(t, Slot{State: SlotOccupied, Shape: J}, p.slots[b.Y][b.X])
		}
		assert.False(t, p.ReadyForNext())
	})

	t.Run("colliding spawn still writes and reports game over", func(t *testing.T) {
		p := NewPlayfield()
		lockSlot(p, 20, 4, T)
		assert.False(t, p.SetActive(newTetromino(J)))
		// the piece is in the grid anyway; the caller reacts to the
		// return value
		assert.Equal(t, SlotOccupied, p.slots[20][4].State)
		assert.NotNil(t, p.Active())
	})
}

func TestTranslateActive(t *testing.T) {
	// J spawns occupying (3,20) (4,20) (5,20) and (3,21)
	tests := []struct {
		name      string
		direction Direction
		locked    []Vec
		want      bool
		wantTrans Vec
	}{
		{
			name:      "left unblocked",
			direction: MoveLeft,
			want:      true,
			wantTrans: Vec{2, 19},
		},
		{
			name:      "left blocked",
			direction: MoveLeft,
			locked:    []Vec{{2, 20}},
			wantTrans: Vec{3, 19},
		},
		{
			name:      "right unblocked",
			direction: MoveRight,
			want:      true,
			wantTrans: Vec{4, 19},
		},
		{
			name:      "right blocked",
			direction: MoveRight,
			locked:    []Vec{{6, 20}},
			wantTrans: Vec{3, 19},
		},
		{
			name:      "down unblocked",
			direction: MoveDown,
			want:      true,
			wantTrans: Vec{3, 18},
		},
		{
			name:      "down blocked",
			direction: MoveDown,
			locked:    []Vec{{4, 19}},
			wantTrans: Vec{3, 19},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayfield()
			for _, l := range tt.locked {
				lockSlot(p, l.Y, l.X, J)
			}
			require.True(t, p.SetActive(newTetromino(J)))
			assert.Equal(t, tt.want, p.TranslateActive(tt.direction))
			assert.Equal(t, tt.wantTrans, p.active.Translation)
			// the occupied slots follow the piece
			for _, b := range p.active.PlayfieldSlots() {
				assert.Equal(t, SlotOccupied, p.slots[b.Y][b.X].State)
			}
		})
	}
}

func TestRotateActive(t *testing.T) {
	t.Run("unblocked rotation commits blocks and facing", func(t *testing.T) {
		p := NewPlayfield()
		tet := newTetromino(T)
		require.True(t, p.SetActive(tet))
		want := p.active.rotated(Clockwise)

		require.True(t, p.RotateActive(Clockwise))
		assert.Equal(t, East, p.active.Facing)
		assert.Equal(t, want, p.active.PlayfieldSlots())
		for _, b := range want {
			if b.Y < Height {
				assert.Equal(t, SlotOccupied, p.slots[b.Y][b.X].State)
			}
		}
	})

	t.Run("blocked rotation mutates nothing", func(t *testing.T) {
		p := NewPlayfield()
		// rotating T clockwise at spawn swings a block into (4,19)
		lockSlot(p, 19, 4, J)
		require.True(t, p.SetActive(newTetromino(T)))

		blocks, facing := p.active.Blocks, p.active.Facing
		assert.False(t, p.RotateActive(Clockwise))
		assert.Equal(t, blocks, p.active.Blocks)
		assert.Equal(t, facing, p.active.Facing)
	})

	t.Run("no kick search against the wall", func(t *testing.T) {
		p := NewPlayfield()
		require.True(t, p.SetActive(newTetromino(I)))
		require.True(t, p.RotateActive(Clockwise)) // bar now vertical
		for p.TranslateActive(MoveLeft) {
		}
		// the flat bar would cross the left wall; without wall kicks
		// the rotation is simply rejected
		assert.False(t, p.RotateActive(Clockwise))
	})
}

func TestHardDropActive(t *testing.T) {
	p := NewPlayfield()
	require.True(t, p.SetActive(newTetromino(O)))

	p.HardDropActive()
	first := p.active.Translation
	assert.Equal(t, 0, p.active.PlayfieldSlots()[2].Y, "O piece should rest on the floor")
	assert.False(t, p.ActiveCanFall())

	// idempotent: a second drop with no other mutation moves nothing
	p.HardDropActive()
	assert.Equal(t, first, p.active.Translation)
}

func TestHardDropOntoStack(t *testing.T) {
	p := NewPlayfield()
	for x := range Width {
		lockSlot(p, 0, x, J)
		lockSlot(p, 1, x, J)
	}
	require.True(t, p.SetActive(newTetromino(O)))
	p.HardDropActive()
	// O's bottom blocks land on top of the two locked rows
	assert.Equal(t, 2, p.active.PlayfieldSlots()[2].Y)
}

func TestLockActive(t *testing.T) {
	p := NewPlayfield()
	require.True(t, p.SetActive(newTetromino(O)))
	p.HardDropActive()
	blocks := p.active.PlayfieldSlots()

	p.LockActive()
	for _, b := range blocks {
		assert.Equal(t, Slot{State: SlotLocked, Shape: O}, p.slots[b.Y][b.X])
	}
	assert.Nil(t, p.Active())
	assert.Nil(t, p.Ghost())
	assert.True(t, p.ReadyForNext())
	for y := range Height {
		for x := range Width {
			assert.NotEqual(t, SlotGhost, p.slots[y][x].State)
		}
	}
}

func TestTakeActive(t *testing.T) {
	p := NewPlayfield()
	tet := newTetromino(S)
	require.True(t, p.SetActive(tet))
	require.True(t, p.TranslateActive(MoveDown))
	require.True(t, p.RotateActive(Clockwise))

	taken := p.TakeActive()
	require.NotNil(t, taken)
	// taken pieces come back reset to their spawn state
	assert.Equal(t, newTetromino(S), taken)
	assert.True(t, p.ReadyForNext())
	for y := range Height {
		for x := range Width {
			assert.Equal(t, SlotEmpty, p.slots[y][x].State)
		}
	}

	assert.Nil(t, p.TakeActive())
}

func TestGhost(t *testing.T) {
	p := NewPlayfield()
	require.True(t, p.SetActive(newTetromino(T)))

	ghost := p.Ghost()
	require.NotNil(t, ghost)
	assert.Equal(t, p.active.Blocks, ghost.Blocks)
	assert.Equal(t, p.active.Facing, ghost.Facing)
	// the ghost sits at the piece's hard-drop landing position
	assert.Equal(t, 0, ghost.PlayfieldSlots()[1].Y)
	for _, b := range ghost.PlayfieldSlots() {
		assert.Equal(t, Slot{State: SlotGhost, Shape: T}, p.slots[b.Y][b.X])
	}

	// the ghost follows movement and rotation
	require.True(t, p.TranslateActive(MoveLeft))
	assert.Equal(t, p.active.Translation.X, p.Ghost().Translation.X)
	require.True(t, p.RotateActive(Clockwise))
	assert.Equal(t, p.active.Facing, p.Ghost().Facing)

	// and never lingers where it used to be
	ghostSlots := map[Vec]bool{}
	for _, b := range p.ghost.PlayfieldSlots() {
		ghostSlots[b] = true
	}
	for y := range Height {
		for x := range Width {
			if p.slots[y][x].State == SlotGhost {
				assert.True(t, ghostSlots[Vec{x, y}], "stale ghost at (%d,%d)", x, y)
			}
		}
	}
}

func TestGhostOverlapsActiveWhenGrounded(t *testing.T) {
	p := NewPlayfield()
	require.True(t, p.SetActive(newTetromino(O)))
	p.HardDropActive()
	// grounded piece: drop delta is zero, occupied slots win over ghost
	for _, b := range p.active.PlayfieldSlots() {
		assert.Equal(t, SlotOccupied, p.slots[b.Y][b.X].State)
	}
}

func TestCompleteLines(t *testing.T) {
	p := NewPlayfield()
	assert.Empty(t, p.CompleteLines())

	for x := range Width {
		lockSlot(p, 5, x, T)
		lockSlot(p, 2, x, J)
	}
	lockSlot(p, 7, 0, J) // partial row doesn't count
	assert.Equal(t, []int{2, 5}, p.CompleteLines())
}

func TestClearCompletedLines(t *testing.T) {
	p := NewPlayfield()
	for x := range Width {
		lockSlot(p, 2, x, J)
		lockSlot(p, 5, x, J)
	}
	// survivors below, between and above the cleared rows
	lockSlot(p, 0, 1, T)
	lockSlot(p, 3, 2, T)
	lockSlot(p, 4, 3, T)
	lockSlot(p, 6, 4, T)
	lockSlot(p, 7, 5, T)

	assert.Equal(t, []int{2, 5}, p.ClearCompletedLines())

	// rows below the lowest cleared row are untouched
	assert.Equal(t, SlotLocked, p.slots[0][1].State)
	assert.Equal(t, SlotEmpty, p.slots[1][0].State)
	// rows between the cleared rows fall by one
	assert.Equal(t, SlotLocked, p.slots[2][2].State)
	assert.Equal(t, SlotLocked, p.slots[3][3].State)
	// rows above the highest cleared row fall by two
	assert.Equal(t, SlotLocked, p.slots[4][4].State)
	assert.Equal(t, SlotLocked, p.slots[5][5].State)
	// the cleared content is gone
	total := 0
	for y := range Height {
		for x := range Width {
			if p.slots[y][x].State == SlotLocked {
				total++
			}
		}
	}
	assert.Equal(t, 5, total)
	// rows with no surviving source become empty
	for x := range Width {
		assert.Equal(t, SlotEmpty, p.slots[Height-1][x].State)
		assert.Equal(t, SlotEmpty, p.slots[Height-2][x].State)
	}

	// idempotent: nothing left to clear
	assert.Empty(t, p.ClearCompletedLines())
}

func TestActiveCanFall(t *testing.T) {
	p := NewPlayfield()
	assert.False(t, p.ActiveCanFall(), "no active piece")

	require.True(t, p.SetActive(newTetromino(I)))
	assert.True(t, p.ActiveCanFall())

	p.HardDropActive()
	assert.False(t, p.ActiveCanFall())
}

func TestPlayfieldString(t *testing.T) {
	p := NewPlayfield()
	lockSlot(p, 0, 0, J)
	out := p.String()
	assert.Contains(t, out, "@")
	assert.Contains(t, out, "--------------------")
}
