package buffer

import (
	"bytes"
	"math/bits"
	"runtime"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/registry"
)

// MaxAllocationSize caps single allocations (1 GB) to prevent runaway
// callers from taking the process down.
const MaxAllocationSize = 1 << 30

type buf struct {
	data []byte
	// tracked is the byte count charged against the pool for this
	// buffer. Aligned allocations charge the padding too, so it can
	// exceed len(data).
	tracked int64
}

func (b *buf) Drop() {}

// Pool owns raw byte buffers addressed by handle. Buffers are plain
// bytes: the pool does stateless byte operations (copy, set, compare)
// with bounds checks, nothing more.
type Pool struct {
	alloc     *handle.Allocator
	reg       *registry.Registry[*buf]
	log       *zap.Logger
	liveBytes atomic.Int64
	peakBytes atomic.Int64
}

// NewPool creates an empty buffer pool sharing the given allocator.
func NewPool(alloc *handle.Allocator, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		alloc: alloc,
		reg:   registry.New[*buf](errors.PhaseBuffer),
		log:   log,
	}
}

// Allocate reserves a zeroed buffer of the given size.
func (p *Pool) Allocate(size int) (handle.Handle, error) {
	if size <= 0 || size > MaxAllocationSize {
		return handle.Invalid, errors.Validation(errors.PhaseBuffer, "invalid allocation size %d", size)
	}

	h := p.alloc.Next()
	if err := p.reg.Insert(h, &buf{data: make([]byte, size), tracked: int64(size)}); err != nil {
		return handle.Invalid, err
	}
	p.track(int64(size))
	return h, nil
}

// AllocateAligned reserves a buffer whose first byte sits on the given
// alignment boundary. align must be a power of two.
func (p *Pool) AllocateAligned(size, align int) (handle.Handle, error) {
	if size <= 0 || size > MaxAllocationSize {
		return handle.Invalid, errors.Validation(errors.PhaseBuffer, "invalid allocation size %d", size)
	}
	if align <= 0 || bits.OnesCount(uint(align)) != 1 {
		return handle.Invalid, errors.Validation(errors.PhaseBuffer, "alignment %d is not a power of two", align)
	}

	// Over-allocate and slice forward to the boundary.
	raw := make([]byte, size+align)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := 0
	if rem := int(addr % uintptr(align)); rem != 0 {
		off = align - rem
	}

	h := p.alloc.Next()
	if err := p.reg.Insert(h, &buf{data: raw[off : off+size : off+size], tracked: int64(size + align)}); err != nil {
		return handle.Invalid, err
	}
	p.track(int64(size + align))
	return h, nil
}

// Free releases the buffer.
func (p *Pool) Free(h handle.Handle) error {
	b, ok := p.reg.Remove(h)
	if !ok {
		return errors.NotFound(errors.PhaseBuffer, uint64(h))
	}
	p.track(-b.tracked)
	return nil
}

// Size returns the buffer's length in bytes.
func (p *Pool) Size(h handle.Handle) (int, error) {
	b, ok := p.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseBuffer, uint64(h))
	}
	return len(b.data), nil
}

// Read copies n bytes starting at offset out of the buffer.
func (p *Pool) Read(h handle.Handle, offset, n int) ([]byte, error) {
	b, ok := p.reg.Get(h)
	if !ok {
		return nil, errors.NotFound(errors.PhaseBuffer, uint64(h))
	}
	if err := checkRange(h, offset, n, len(b.data)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.data[offset:])
	return out, nil
}

// Write copies data into the buffer starting at offset.
func (p *Pool) Write(h handle.Handle, offset int, data []byte) error {
	b, ok := p.reg.Get(h)
	if !ok {
		return errors.NotFound(errors.PhaseBuffer, uint64(h))
	}
	if err := checkRange(h, offset, len(data), len(b.data)); err != nil {
		return err
	}
	copy(b.data[offset:], data)
	return nil
}

// Copy moves n bytes from the start of src to the start of dst.
func (p *Pool) Copy(dst, src handle.Handle, n int) error {
	d, ok := p.reg.Get(dst)
	if !ok {
		return errors.NotFound(errors.PhaseBuffer, uint64(dst))
	}
	s, ok := p.reg.Get(src)
	if !ok {
		return errors.NotFound(errors.PhaseBuffer, uint64(src))
	}
	if err := checkRange(dst, 0, n, len(d.data)); err != nil {
		return err
	}
	if err := checkRange(src, 0, n, len(s.data)); err != nil {
		return err
	}
	copy(d.data[:n], s.data[:n])
	return nil
}

// Set fills the first n bytes of the buffer with value.
func (p *Pool) Set(h handle.Handle, value byte, n int) error {
	b, ok := p.reg.Get(h)
	if !ok {
		return errors.NotFound(errors.PhaseBuffer, uint64(h))
	}
	if err := checkRange(h, 0, n, len(b.data)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		b.data[i] = value
	}
	return nil
}

// Compare compares the first n bytes of two buffers, memcmp-style:
// negative, zero or positive.
func (p *Pool) Compare(a, b handle.Handle, n int) (int, error) {
	ba, ok := p.reg.Get(a)
	if !ok {
		return 0, errors.NotFound(errors.PhaseBuffer, uint64(a))
	}
	bb, ok := p.reg.Get(b)
	if !ok {
		return 0, errors.NotFound(errors.PhaseBuffer, uint64(b))
	}
	if err := checkRange(a, 0, n, len(ba.data)); err != nil {
		return 0, err
	}
	if err := checkRange(b, 0, n, len(bb.data)); err != nil {
		return 0, err
	}
	return bytes.Compare(ba.data[:n], bb.data[:n]), nil
}

// Stats reports pool and process memory usage.
type Stats struct {
	Buffers   int
	LiveBytes int64
	PeakBytes int64
	HeapAlloc uint64
	HeapSys   uint64
}

// Usage returns current memory statistics.
func (p *Pool) Usage() Stats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Stats{
		Buffers:   p.reg.Len(),
		LiveBytes: p.liveBytes.Load(),
		PeakBytes: p.peakBytes.Load(),
		HeapAlloc: ms.HeapAlloc,
		HeapSys:   ms.HeapSys,
	}
}

// Len returns the number of live buffers.
func (p *Pool) Len() int { return p.reg.Len() }

// Close drops every buffer.
func (p *Pool) Close() error {
	p.liveBytes.Store(0)
	return p.reg.Close()
}

func (p *Pool) track(delta int64) {
	live := p.liveBytes.Add(delta)
	for {
		peak := p.peakBytes.Load()
		if live <= peak || p.peakBytes.CompareAndSwap(peak, live) {
			return
		}
	}
}

func checkRange(h handle.Handle, offset, n, size int) error {
	if offset < 0 || n < 0 || offset+n > size {
		return errors.OutOfBounds(errors.PhaseBuffer, uint64(h), offset, n, size)
	}
	return nil
}
