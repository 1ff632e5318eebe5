package tetris

// Vec is a playfield-space vector. X is the column, Y is the row.
// Rows count up from the floor: row 0 is the bottom of the playfield.
type Vec struct {
	X, Y int
}

func (v Vec) add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) neg() Vec      { return Vec{-v.X, -v.Y} }

// Shape identifies one of the seven tetromino kinds. The letter doubles
// as the identity tag stored in locked slots and mapped to a color by
// whatever is rendering.
type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	L Shape = "L"
	J Shape = "J"
	S Shape = "S"
	Z Shape = "Z"
)

// Shapes lists every tetromino kind, in the order used by the sequencer.
var Shapes = [7]Shape{I, O, T, L, J, S, Z}

// Facing is one of the four rotational orientations a tetromino can occupy.
type Facing int

const (
	North Facing = iota
	East
	South
	West
)

func (f Facing) String() string {
	return [...]string{"N", "E", "S", "W"}[f]
}

// rotated returns the facing after applying one rotation step.
func (f Facing) rotated(r Rotation) Facing {
	if r == Clockwise {
		return (f + 1) % 4
	}
	return (f + 3) % 4
}

// Rotation is a rotation direction.
type Rotation int

const (
	Clockwise Rotation = iota
	CounterClockwise
)

/*
Each shape is four blocks addressed as (column, row) offsets that are
added to the tetromino's translation. The diagram shows the I piece at
its spawn translation (3,18), rows counting up from the floor:

	.	0 1 2 3 4 5 6 7 8 9		.	0 1 2 3

	21	X X X X X X X X X X		3	X X X X

	20	X X X O O O O X X X		2	O O O O

	19	X X X X X X X X X X		1	X X X X
*/
var shapeBlocks = map[Shape][4]Vec{
	I: {{0, 2}, {1, 2}, {2, 2}, {3, 2}},
	O: {{1, 2}, {2, 2}, {2, 1}, {1, 1}},
	T: {{1, 1}, {0, 1}, {1, 2}, {2, 1}},
	L: {{1, 1}, {0, 1}, {2, 2}, {2, 1}},
	J: {{1, 1}, {0, 1}, {0, 2}, {2, 1}},
	S: {{1, 1}, {0, 1}, {1, 2}, {2, 2}},
	Z: {{1, 1}, {0, 2}, {1, 2}, {2, 1}},
}

// Bounding box edge length per shape, in blocks.
var shapeBox = map[Shape]int{
	I: 4,
	O: 3,
	T: 3,
	L: 3,
	J: 3,
	S: 3,
	Z: 3,
}

var (
	iSpawn      = Vec{3, 18}
	otljszSpawn = Vec{3, 19}
)

// Per-shape clockwise transition tables, indexed by the current facing:
// [North] holds the N>>E block deltas, [East] E>>S, [South] S>>W and
// [West] W>>N. A counter-clockwise rotation from facing f is the negation
// of the table for the transition that would return to f, so the same
// four tables serve both directions.
var shapeRotations = map[Shape][4][4]Vec{
	I: {
		{{2, 1}, {1, 0}, {0, -1}, {-1, -2}},  // N>>E
		{{1, -2}, {0, -1}, {-1, 0}, {-2, 1}}, // E>>S
		{{-2, -1}, {-1, 0}, {0, 1}, {1, 2}},  // S>>W
		{{-1, 2}, {0, 1}, {1, 0}, {2, -1}},   // W>>N
	},
	O: {
		{{1, 0}, {0, -1}, {-1, 0}, {0, 1}}, // N>>E
		{{0, -1}, {-1, 0}, {0, 1}, {1, 0}}, // E>>S
		{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}, // S>>W
		{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}, // W>>N
	},
	T: {
		{{0, 0}, {1, 1}, {1, -1}, {-1, -1}},  // N>>E
		{{0, 0}, {1, -1}, {-1, -1}, {-1, 1}}, // E>>S
		{{0, 0}, {-1, -1}, {-1, 1}, {1, 1}},  // S>>W
		{{0, 0}, {-1, 1}, {1, 1}, {1, -1}},   // W>>N
	},
	L: {
		{{0, 0}, {1, 1}, {0, -2}, {-1, -1}}, // N>>E
		{{0, 0}, {1, -1}, {-2, 0}, {-1, 1}}, // E>>S
		{{0, 0}, {-1, -1}, {0, 2}, {1, 1}},  // S>>W
		{{0, 0}, {-1, 1}, {2, 0}, {1, -1}},  // W>>N
	},
	J: {
		{{0, 0}, {1, 1}, {2, 0}, {-1, -1}},  // N>>E
		{{0, 0}, {1, -1}, {0, -2}, {-1, 1}}, // E>>S
		{{0, 0}, {-1, -1}, {-2, 0}, {1, 1}}, // S>>W
		{{0, 0}, {-1, 1}, {0, 2}, {1, -1}},  // W>>N
	},
	S: {
		{{0, 0}, {1, 1}, {1, -1}, {0, -2}},  // N>>E
		{{0, 0}, {1, -1}, {-1, -1}, {-2, 0}}, // E>>S
		{{0, 0}, {-1, -1}, {-1, 1}, {0, 2}}, // S>>W
		{{0, 0}, {-1, 1}, {1, 1}, {2, 0}},   // W>>N
	},
	Z: {
		{{0, 0}, {2, 0}, {1, -1}, {-1, -1}}, // N>>E
		{{0, 0}, {0, -2}, {-1, -1}, {-1, 1}}, // E>>S
		{{0, 0}, {-2, 0}, {-1, 1}, {1, 1}},  // S>>W
		{{0, 0}, {0, 2}, {1, 1}, {1, -1}},   // W>>N
	},
}

// Tetromino is a piece in play: a shape at some facing, its four block
// offsets (mutated by rotation) and a translation (mutated by movement).
type Tetromino struct {
	Shape       Shape
	Facing      Facing
	Blocks      [4]Vec
	Translation Vec
}

func newTetromino(s Shape) *Tetromino {
	spawn := otljszSpawn
	if s == I {
		spawn = iSpawn
	}
	return &Tetromino{
		Shape:       s,
		Facing:      North,
		Blocks:      shapeBlocks[s],
		Translation: spawn,
	}
}

// Box returns the edge length of the shape's bounding box in blocks.
func (t *Tetromino) Box() int { return shapeBox[t.Shape] }

// PlayfieldSlots returns the absolute playfield position of each block.
func (t *Tetromino) PlayfieldSlots() [4]Vec {
	return t.translated(Vec{})
}

// translated returns the absolute block positions shifted by delta.
func (t *Tetromino) translated(delta Vec) [4]Vec {
	var out [4]Vec
	for i, b := range t.Blocks {
		out[i] = b.add(t.Translation).add(delta)
	}
	return out
}

func (t *Tetromino) translate(delta Vec) {
	t.Translation = t.Translation.add(delta)
}

// rotationTrans returns the per-block deltas for rotating from the
// current facing in the given direction.
func (t *Tetromino) rotationTrans(r Rotation) [4]Vec {
	tables := shapeRotations[t.Shape]
	if r == Clockwise {
		return tables[t.Facing]
	}
	trans := tables[t.Facing.rotated(CounterClockwise)]
	for i := range trans {
		trans[i] = trans[i].neg()
	}
	return trans
}

// rotated returns the absolute block positions the tetromino would occupy
// after rotating, without mutating it.
func (t *Tetromino) rotated(r Rotation) [4]Vec {
	trans := t.rotationTrans(r)
	var out [4]Vec
	for i, b := range t.Blocks {
		out[i] = b.add(t.Translation).add(trans[i])
	}
	return out
}

// rotate commits a rotation: block offsets shift by the transition table
// and the facing advances.
func (t *Tetromino) rotate(r Rotation) {
	trans := t.rotationTrans(r)
	for i := range t.Blocks {
		t.Blocks[i] = t.Blocks[i].add(trans[i])
	}
	t.Facing = t.Facing.rotated(r)
}

// reset returns a fresh tetromino of the same shape at its spawn
// position, used when a piece leaves play through the hold slot.
func (t *Tetromino) reset() *Tetromino {
	return newTetromino(t.Shape)
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
