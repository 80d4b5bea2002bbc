// Package fetch downloads HTTP resources into memory through a sequential
// chunk stream, reporting progress as bytes arrive.
package fetch

import (
	"context"
	"io"
	"time"

	"github.com/NamanBalaji/fget/internal/logger"
	"github.com/NamanBalaji/fget/internal/progress"
)

// Options tunes a single fetch.
type Options struct {
	// Headers are added to the request after the client defaults.
	Headers map[string]string

	// ProgressFn, when set, is invoked once per received chunk with the
	// running observation. Calls happen on the fetching goroutine.
	ProgressFn func(received, expected, speed int64)
}

// Result is a completed fetch: the assembled body plus what the server told
// us about it.
type Result struct {
	Info     *ResourceInfo
	Received int64

	body []byte
}

// Bytes returns the assembled body as an opaque byte buffer.
func (r *Result) Bytes() []byte {
	return r.body
}

// Text decodes the body using the named IANA charset ("" means UTF-8).
func (r *Result) Text(charset string) (string, error) {
	return DecodeText(r.Info.URL, r.body, charset)
}

// JSON parses the body as JSON into v.
func (r *Result) JSON(v any) error {
	return DecodeJSON(r.Info.URL, r.body, v)
}

// Fetch downloads urlStr into memory. It opens a stream, pulls chunks until
// the completion signal, then assembles them into one contiguous buffer. A
// transfer that ends before completion returns an error and no partial
// result. Cancelling ctx aborts the pull loop.
func (c *Client) Fetch(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	start := time.Now()

	stream, info, err := c.Open(ctx, urlStr, opts.Headers)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	acc := NewAccumulator(stream.ExpectedLength())
	speed := progress.NewSpeedCalculator(5)

	if opts.ProgressFn != nil {
		acc.OnProgress(func(received, expected int64) {
			opts.ProgressFn(received, expected, speed.GetSpeed())
		})
	}

	for {
		chunk, done, err := stream.Next(ctx)
		if err != nil {
			logger.Errorf("Fetch aborted for %s after %d bytes: %v", urlStr, acc.Received(), err)
			return nil, err
		}

		if done {
			break
		}

		speed.AddBytes(int64(len(chunk)))
		acc.Append(chunk)
	}

	if expected := acc.Expected(); expected >= 0 && acc.Received() != expected {
		return nil, NewTransferError(urlStr, io.ErrUnexpectedEOF)
	}

	logger.Infof("Fetched %s: %d bytes in %d chunks (%v)",
		urlStr, acc.Received(), acc.ChunkCount(), time.Since(start).Round(time.Millisecond))

	return &Result{
		Info:     info,
		Received: acc.Received(),
		body:     acc.Assemble(),
	}, nil
}
