package pipeline

import (
	"sync"
	"sync/atomic"
)

// BlockPool recycles fixed-size blocks between files and stages.
type BlockPool struct {
	pool sync.Pool
	size int
}

// NewBlockPool creates a pool of blocks with size bytes of capacity each.
func NewBlockPool(size int) *BlockPool {
	if size <= 0 {
		panic("pipeline: block size must be positive")
	}
	p := &BlockPool{size: size}
	p.pool.New = func() any {
		return &Block{buf: make([]byte, size), pool: p}
	}
	return p
}

// Get returns an empty block holding one reference.
func (p *BlockPool) Get() *Block {
	b := p.pool.Get().(*Block) //nolint:forcetypeassert // pool only holds *Block
	b.n = 0
	b.refs.Store(1)
	return b
}

// Size returns the capacity of blocks in this pool.
func (p *BlockPool) Size() int {
	return p.size
}

// Block is a reference-counted chunk of file data. The router hands the
// same block to the hash and write stages; it returns to its pool when the
// last of them releases it.
type Block struct {
	pool *BlockPool
	buf  []byte
	n    int
	refs atomic.Int32
}

// Buffer returns the full backing slice for reading into.
func (b *Block) Buffer() []byte { return b.buf }

// SetLen records how many bytes of the buffer hold data.
func (b *Block) SetLen(n int) { b.n = n }

// Len returns the number of data bytes.
func (b *Block) Len() int { return b.n }

// Bytes returns the data bytes. Holders must not modify them.
func (b *Block) Bytes() []byte { return b.buf[:b.n] }

// Retain adds a reference for an additional consumer.
func (b *Block) Retain() { b.refs.Add(1) }

// Release drops one reference.
func (b *Block) Release() {
	switch refs := b.refs.Add(-1); {
	case refs == 0:
		if b.pool != nil {
			b.pool.pool.Put(b)
		}
	case refs < 0:
		panic("pipeline: block released more times than retained")
	}
}
