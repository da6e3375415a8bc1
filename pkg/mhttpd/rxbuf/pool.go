package rxbuf

import "sync"

// Pool hands out fixed-size receive buffers for connections. Every
// connection shares one buffer size chosen once at Start, so a single
// sync.Pool size class is enough — no need for the multiple size classes
// a general-purpose buffer pool would carry.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool creates a buffer pool that hands out slices of exactly size
// bytes.
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// Get returns a buffer of exactly the pool's configured size.
func (p *Pool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return (*bufPtr)[:p.size]
}

// Put returns buf to the pool. buf must have been obtained from Get on
// this pool; buffers of the wrong capacity are discarded rather than
// pooled.
func (p *Pool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}
