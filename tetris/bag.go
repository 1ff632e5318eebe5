package tetris

import "math/rand/v2"

// refillSize is how many shapes are queued up whenever the sequencer
// runs low. Refilling in batches keeps Next total: it can never run dry
// between refills.
const refillSize = 20

// sequencer produces the unending stream of upcoming shapes. Each shape
// is an independent uniform draw over the seven kinds, buffered ahead so
// the next piece can always be previewed. The random source is injected
// so tests can pin the seed.
type sequencer struct {
	queue []Shape
	rng   *rand.Rand
}

func newSequencer(rng *rand.Rand) *sequencer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &sequencer{rng: rng}
	s.refill()
	return s
}

func newSeededSequencer(seed uint64) *sequencer {
	return newSequencer(rand.New(rand.NewPCG(seed, seed)))
}

// Next returns the next shape in the sequence. It never blocks and never
// fails; the queue is topped up synchronously before it can run empty.
func (s *sequencer) Next() Shape {
	if len(s.queue) == 0 {
		s.refill()
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	return next
}

func (s *sequencer) refill() {
	for range refillSize {
		s.queue = append(s.queue, Shapes[s.rng.IntN(len(Shapes))])
	}
}
