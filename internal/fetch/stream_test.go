package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/NamanBalaji/fget/internal/progress"
)

// scriptedBody replays a fixed sequence of reads, optionally failing at the end.
type scriptedBody struct {
	reads  [][]byte
	err    error // returned after the scripted reads; nil means io.EOF
	closed bool
}

func (b *scriptedBody) Read(p []byte) (int, error) {
	if len(b.reads) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}

	chunk := b.reads[0]
	b.reads = b.reads[1:]

	return copy(p, chunk), nil
}

func (b *scriptedBody) Close() error {
	b.closed = true
	return nil
}

func TestStreamNextDeliversChunksInOrder(t *testing.T) {
	t.Parallel()

	body := &scriptedBody{reads: [][]byte{[]byte("abc"), []byte("defg"), []byte("h")}}
	s := newStream(body, "http://example.com/file", 8)

	var got []byte
	pulls := 0

	for {
		chunk, done, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error on pull %d: %v", pulls, err)
		}
		if done {
			if chunk != nil {
				t.Fatal("done signal must not carry a chunk")
			}
			break
		}

		got = append(got, chunk...)
		pulls++
	}

	if !bytes.Equal(got, []byte("abcdefgh")) {
		t.Errorf("expected abcdefgh, got %q", got)
	}
	if pulls != 3 {
		t.Errorf("expected 3 chunk pulls, got %d", pulls)
	}
	if !body.closed {
		t.Error("body should be closed once the stream is exhausted")
	}

	// Done is terminal and repeatable.
	_, done, err := s.Next(context.Background())
	if err != nil || !done {
		t.Errorf("expected repeated done signal, got done=%v err=%v", done, err)
	}
}

func TestStreamNextPropagatesTransferFailure(t *testing.T) {
	t.Parallel()

	body := &scriptedBody{
		reads: [][]byte{[]byte("partial")},
		err:   io.ErrUnexpectedEOF,
	}
	s := newStream(body, "http://example.com/file", 100)

	chunk, done, err := s.Next(context.Background())
	if err != nil || done {
		t.Fatalf("first pull should succeed, got done=%v err=%v", done, err)
	}
	if string(chunk) != "partial" {
		t.Fatalf("expected partial chunk, got %q", chunk)
	}

	_, _, err = s.Next(context.Background())
	if err == nil {
		t.Fatal("expected a transfer error, got nil")
	}
	if !IsTransferInterrupted(err) {
		t.Errorf("expected transfer-interrupted classification, got %v", err)
	}
	if !body.closed {
		t.Error("body should be closed after a failed transfer")
	}
}

func TestStreamNextHonorsCancellation(t *testing.T) {
	t.Parallel()

	body := &scriptedBody{reads: [][]byte{[]byte("data")}}
	s := newStream(body, "http://example.com/file", progress.UnknownTotal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Next(ctx)
	if !IsTransferInterrupted(err) {
		t.Errorf("expected transfer-interrupted on cancelled context, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the cause to be context.Canceled, got %v", err)
	}
}

func TestStreamSingleConsumer(t *testing.T) {
	t.Parallel()

	t.Run("next after all", func(t *testing.T) {
		t.Parallel()

		body := &scriptedBody{reads: [][]byte{[]byte("whole")}}
		s := newStream(body, "http://example.com/file", 5)

		data, err := s.All(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "whole" {
			t.Errorf("expected whole body, got %q", data)
		}

		_, _, err = s.Next(context.Background())
		if !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("expected ErrStreamConsumed, got %v", err)
		}
	})

	t.Run("all after next", func(t *testing.T) {
		t.Parallel()

		body := &scriptedBody{reads: [][]byte{[]byte("chunked")}}
		s := newStream(body, "http://example.com/file", 7)

		if _, _, err := s.Next(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := s.All(context.Background())
		if !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("expected ErrStreamConsumed, got %v", err)
		}
	})
}

func TestStreamAllDetectsShortBody(t *testing.T) {
	t.Parallel()

	body := &scriptedBody{reads: [][]byte{[]byte("short")}}
	s := newStream(body, "http://example.com/file", 100)

	_, err := s.All(context.Background())
	if !IsTransferInterrupted(err) {
		t.Errorf("expected transfer-interrupted for a short body, got %v", err)
	}
}
