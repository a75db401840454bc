// Package domain defines the core domain models of the block server.
package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidBlockValue indicates that the blocks parameter is not a base-10 integer.
var ErrInvalidBlockValue = errors.New("invalid block value")

// InvalidBlockValueMessage is the exact response body sent for an unparseable blocks parameter.
const InvalidBlockValueMessage = "Invalid block value"

// Phrase is the 64-byte line that makes up a block.
const Phrase = "somehow the world seems more curious than when i was a child xx\n"

const (
	// PhrasesPerBlock is the number of phrase lines in one block.
	PhrasesPerBlock = 16

	// BlockSize is the size of a block in bytes.
	BlockSize = len(Phrase) * PhrasesPerBlock

	// DefaultBlockCount is used when the request carries no blocks value.
	DefaultBlockCount int64 = 1000
)

// Block is the 1 KiB text block.
var Block = strings.Repeat(Phrase, PhrasesPerBlock)

// BlockCount represents the number of blocks requested.
// Negative values are kept as given; they produce no output.
type BlockCount struct {
	value int64
}

// NewBlockCount creates a new BlockCount.
func NewBlockCount(n int64) BlockCount {
	return BlockCount{value: n}
}

// ParseBlockCount parses a raw parameter value as a base-10 integer.
// Surrounding whitespace and a leading sign are accepted. Integers beyond
// the int64 range are clamped to it rather than rejected.
func ParseBlockCount(raw string) (BlockCount, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil && !(errors.Is(err, strconv.ErrRange) && isDecimal(trimmed)) {
		return BlockCount{}, fmt.Errorf("%w: %q", ErrInvalidBlockValue, raw)
	}
	return BlockCount{value: n}, nil
}

// isDecimal reports whether s is an optionally signed run of ASCII digits.
// ParseInt stops at the first overflowing digit, so a range error alone says nothing about the rest.
func isDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Value returns the int64 representation of the count.
func (c BlockCount) Value() int64 {
	return c.value
}

// Emitted returns how many blocks are actually written: the count, or zero when negative.
func (c BlockCount) Emitted() int64 {
	if c.value < 0 {
		return 0
	}
	return c.value
}

// PayloadSize returns the body length in bytes, each block followed by a line break.
// It saturates at math.MaxInt64.
func (c BlockCount) PayloadSize() int64 {
	emitted := c.Emitted()
	if emitted > math.MaxInt64/int64(BlockSize+1) {
		return math.MaxInt64
	}
	return emitted * int64(BlockSize+1)
}
