package fetch

import (
	"github.com/NamanBalaji/fget/internal/progress"
)

// Accumulator collects chunks in arrival order and tracks the running byte
// count. The sum of stored chunk lengths always equals Received.
type Accumulator struct {
	chunks     [][]byte
	received   int64
	expected   int64
	onProgress func(received, expected int64)
}

// NewAccumulator creates an accumulator for a body of the given expected
// length (progress.UnknownTotal when not advertised).
func NewAccumulator(expected int64) *Accumulator {
	if expected < 0 {
		expected = progress.UnknownTotal
	}

	return &Accumulator{expected: expected}
}

// OnProgress registers an observer called after every appended chunk with
// the running received count and the expected length.
func (a *Accumulator) OnProgress(fn func(received, expected int64)) {
	a.onProgress = fn
}

// Append stores a chunk and advances the received counter. Zero-length
// chunks are recorded as observations but contribute no bytes.
func (a *Accumulator) Append(chunk []byte) {
	a.chunks = append(a.chunks, chunk)
	a.received += int64(len(chunk))

	if a.onProgress != nil {
		a.onProgress(a.received, a.expected)
	}
}

// Received returns the total bytes accumulated so far.
func (a *Accumulator) Received() int64 {
	return a.received
}

// Expected returns the advertised total, or progress.UnknownTotal.
func (a *Accumulator) Expected() int64 {
	return a.expected
}

// ChunkCount returns how many chunks have arrived.
func (a *Accumulator) ChunkCount() int {
	return len(a.chunks)
}

// Assemble concatenates all chunks into one contiguous buffer of exactly
// Received bytes, each chunk copied at the cumulative offset of its
// predecessors. Zero chunks yields an empty buffer.
func (a *Accumulator) Assemble() []byte {
	buf := make([]byte, a.received)

	var offset int64
	for _, chunk := range a.chunks {
		copy(buf[offset:], chunk)
		offset += int64(len(chunk))
	}

	return buf
}
