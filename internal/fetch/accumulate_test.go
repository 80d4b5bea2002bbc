package fetch

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/NamanBalaji/fget/internal/progress"
)

func TestAccumulatorReceivedMatchesChunkSum(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(35)

	var observations []string
	acc.OnProgress(func(received, expected int64) {
		observations = append(observations, fmt.Sprintf("%d/%d", received, expected))
	})

	for _, size := range []int{10, 20, 5} {
		acc.Append(bytes.Repeat([]byte{'x'}, size))
	}

	if acc.Received() != 35 {
		t.Errorf("expected received 35, got %d", acc.Received())
	}

	want := []string{"10/35", "30/35", "35/35"}
	if len(observations) != len(want) {
		t.Fatalf("expected %d observations, got %d", len(want), len(observations))
	}
	for i, obs := range observations {
		if obs != want[i] {
			t.Errorf("observation %d: expected %s, got %s", i, want[i], obs)
		}
	}
}

func TestAccumulatorAssembleOrder(t *testing.T) {
	t.Parallel()

	chunks := [][]byte{
		[]byte("hello "),
		{},
		[]byte("streaming "),
		[]byte("world"),
	}

	acc := NewAccumulator(progress.UnknownTotal)
	for _, c := range chunks {
		acc.Append(c)
	}

	buf := acc.Assemble()

	if got, want := string(buf), "hello streaming world"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if int64(len(buf)) != acc.Received() {
		t.Errorf("buffer length %d != received %d", len(buf), acc.Received())
	}
	if acc.ChunkCount() != 4 {
		t.Errorf("expected 4 chunks, got %d", acc.ChunkCount())
	}
}

func TestAccumulatorEmpty(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(0)

	buf := acc.Assemble()
	if len(buf) != 0 {
		t.Errorf("expected empty buffer, got %d bytes", len(buf))
	}
	if acc.Received() != 0 {
		t.Errorf("expected received 0, got %d", acc.Received())
	}

	text, err := DecodeText("http://example.com/empty", buf, "")
	if err != nil {
		t.Fatalf("decoding an empty buffer should not fail: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty string, got %q", text)
	}
}

func TestAccumulatorRoundTrip(t *testing.T) {
	t.Parallel()

	original := "chunk boundaries must never change the reassembled bytes: é世界"
	data := []byte(original)

	splits := [][]int{
		{len(data)},
		{1, len(data) - 1},
		{3, 0, 7, len(data) - 10},
	}

	for _, split := range splits {
		acc := NewAccumulator(int64(len(data)))

		offset := 0
		for _, size := range split {
			acc.Append(data[offset : offset+size])
			offset += size
		}
		if offset < len(data) {
			acc.Append(data[offset:])
		}

		text, err := DecodeText("http://example.com/text", acc.Assemble(), "utf-8")
		if err != nil {
			t.Fatalf("split %v: unexpected decode error: %v", split, err)
		}
		if text != original {
			t.Errorf("split %v: round trip mismatch: got %q", split, text)
		}
	}
}
