package fetch

import (
	"context"
	"errors"
	"io"
)

const defaultChunkSize = 32 * 1024

// Stream is a single-owner pull source over a response body. Pulls are
// strictly sequential; a Stream can be drained either chunk by chunk with
// Next or in one shot with All, never both.
type Stream struct {
	body     io.ReadCloser
	url      string
	expected int64
	buf      []byte

	mode   streamMode
	done   bool
	closed bool
}

type streamMode int

const (
	modeUnset streamMode = iota
	modeChunked
	modeWhole
)

func newStream(body io.ReadCloser, url string, expected int64) *Stream {
	return &Stream{
		body:     body,
		url:      url,
		expected: expected,
		buf:      make([]byte, defaultChunkSize),
	}
}

// ExpectedLength returns the advertised body size, or progress.UnknownTotal.
func (s *Stream) ExpectedLength() int64 {
	return s.expected
}

// Next pulls the next chunk. It returns (chunk, false, nil) while data keeps
// arriving, (nil, true, nil) exactly once the body is exhausted, and a
// transfer error if the body ends abnormally. The returned chunk is owned by
// the caller. Calling Next after All returns ErrStreamConsumed.
func (s *Stream) Next(ctx context.Context) ([]byte, bool, error) {
	if s.mode == modeWhole {
		return nil, false, &Error{Kind: KindValidation, Operation: "read", URL: s.url, Err: ErrStreamConsumed}
	}
	s.mode = modeChunked

	if s.done {
		return nil, true, nil
	}

	if err := ctx.Err(); err != nil {
		s.finish()
		return nil, false, NewTransferError(s.url, err)
	}

	n, err := s.body.Read(s.buf)

	var chunk []byte
	if n > 0 {
		chunk = make([]byte, n)
		copy(chunk, s.buf[:n])
	}

	switch {
	case err == nil:
		return chunk, false, nil

	case errors.Is(err, io.EOF):
		s.finish()

		if chunk != nil {
			// Deliver the final bytes now; the done signal follows on the
			// next pull so that it never carries a chunk.
			return chunk, false, nil
		}

		return nil, true, nil

	default:
		s.finish()
		return nil, false, NewTransferError(s.url, err)
	}
}

// All consumes the entire body in one shot. It is the alternative to the
// chunked pull loop; once either strategy has touched the stream the other
// is rejected.
func (s *Stream) All(ctx context.Context) ([]byte, error) {
	if s.mode != modeUnset {
		return nil, &Error{Kind: KindValidation, Operation: "read", URL: s.url, Err: ErrStreamConsumed}
	}
	s.mode = modeWhole

	defer s.finish()

	if err := ctx.Err(); err != nil {
		return nil, NewTransferError(s.url, err)
	}

	data, err := io.ReadAll(s.body)
	if err != nil {
		return nil, NewTransferError(s.url, err)
	}

	if s.expected >= 0 && int64(len(data)) != s.expected {
		return nil, NewTransferError(s.url, io.ErrUnexpectedEOF)
	}

	return data, nil
}

// Close releases the underlying body. Safe to call more than once and after
// the stream is exhausted.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	return s.body.Close()
}

func (s *Stream) finish() {
	s.done = true
	s.Close()
}
