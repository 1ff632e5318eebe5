package tetris

// NewTestGame creates a seeded game whose first piece has the given
// shape, already spawned. It exists so other packages' tests can build
// a game in a known state.
func NewTestGame(shape Shape) *Game {
	g := NewSeeded(1)
	g.next = newTetromino(shape)
	g.Advance(0)
	return g
}
