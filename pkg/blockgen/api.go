// Package blockgen defines the public API contract for the block generator.
package blockgen

import (
	"context"
	"io"
)

// Generator produces the bulk text payload served to HTTP test harnesses.
type Generator interface {
	// Resolve turns the raw values of the blocks parameter into a block count.
	// Blank values are skipped; no usable value yields the configured default.
	Resolve(values []string) (count int64, err error)

	// ContentLength returns the exact body size for count blocks.
	ContentLength(count int64) int64

	// WriteBlocks streams count blocks to w, each followed by a line break.
	// It stops early when ctx is cancelled.
	WriteBlocks(ctx context.Context, w io.Writer, count int64) (written int64, err error)
}
