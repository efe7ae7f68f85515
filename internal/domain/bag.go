package domain

import (
	"math/rand/v2"
	"sync"
)

// Bag is a shared 7-bag randomizer. Each refill appends a fresh shuffle of
// all kinds to one sequence; every BagReader walks that same sequence with
// its own cursor, so boards sharing a Bag see an identical piece order.
// Safe for concurrent use.
type Bag struct {
	mu      sync.Mutex
	rng     *rand.Rand
	seq     []Kind
	offset  int // absolute index of seq[0]
	readers map[*BagReader]struct{}

	// nothing is discarded until this many readers have registered, so a
	// reader that joins late still starts at the first piece
	consumers  int
	registered int
}

// NewBag creates a single-consumer bag whose sequence is fully determined
// by seed.
func NewBag(seed uint64) *Bag {
	return NewSharedBag(seed, 1)
}

// NewSharedBag creates a bag that will be read by consumers boards. Every
// one of them sees the sequence from its first piece, whenever it registers.
func NewSharedBag(seed uint64, consumers int) *Bag {
	return &Bag{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		readers:   make(map[*BagReader]struct{}),
		consumers: max(1, consumers),
	}
}

// BagReader is one consumer's cursor over a Bag's sequence.
type BagReader struct {
	bag *Bag
	pos int
}

// NewReader registers a consumer starting at the oldest retained piece.
func (b *Bag) NewReader() *BagReader {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.register()
}

// NewReaders registers n consumers at once, all starting at the same piece.
func (b *Bag) NewReaders(n int) []*BagReader {
	b.mu.Lock()
	defer b.mu.Unlock()

	readers := make([]*BagReader, n)
	for i := range readers {
		readers[i] = b.register()
	}
	return readers
}

func (b *Bag) register() *BagReader {
	r := &BagReader{bag: b, pos: b.offset}
	b.readers[r] = struct{}{}
	b.registered++
	return r
}

// Next returns the reader's next kind, refilling the bag when the shared
// sequence is exhausted.
func (r *BagReader) Next() Kind {
	b := r.bag
	b.mu.Lock()
	defer b.mu.Unlock()

	for r.pos-b.offset >= len(b.seq) {
		b.refill()
	}
	k := b.seq[r.pos-b.offset]
	r.pos++
	b.compact()
	return k
}

// Drawn is the number of kinds this reader has consumed.
func (r *BagReader) Drawn() int {
	r.bag.mu.Lock()
	defer r.bag.mu.Unlock()
	return r.pos
}

// Close unregisters the reader so the bag can discard pieces only it held.
func (r *BagReader) Close() {
	b := r.bag
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.readers, r)
	b.compact()
}

func (b *Bag) refill() {
	batch := AllKinds()
	b.rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	b.seq = append(b.seq, batch...)
}

// compact drops the prefix every registered reader has already consumed.
func (b *Bag) compact() {
	if len(b.readers) == 0 || b.registered < b.consumers {
		return
	}
	lowest := -1
	for r := range b.readers {
		if lowest < 0 || r.pos < lowest {
			lowest = r.pos
		}
	}
	drop := lowest - b.offset
	if drop <= 0 {
		return
	}
	if drop > len(b.seq) {
		drop = len(b.seq)
	}
	b.seq = append(b.seq[:0], b.seq[drop:]...)
	b.offset += drop
}
