// Package application contains the core logic of the block server.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"httpblock/internal/config"
	"httpblock/internal/core/domain"
	"httpblock/internal/logger"
	"httpblock/pkg/blockgen"
)

// ctxCheckInterval is how many blocks are written between context checks.
const ctxCheckInterval = 64

// BlockServiceImpl implements the blockgen.Generator interface.
type BlockServiceImpl struct {
	logger       logger.AppLogger
	defaultCount domain.BlockCount
	line         []byte
}

// Compile-time check to ensure BlockServiceImpl implements blockgen.Generator
var _ blockgen.Generator = (*BlockServiceImpl)(nil)

// NewBlockService creates a new instance of BlockServiceImpl.
func NewBlockService(appLogger logger.AppLogger, cfg config.BlocksConfig) (*BlockServiceImpl, error) {
	if appLogger == nil {
		return nil, errors.New("NewBlockService: appLogger is nil")
	}

	return &BlockServiceImpl{
		logger:       appLogger,
		defaultCount: domain.NewBlockCount(cfg.DefaultCount),
		line:         []byte(domain.Block + "\n"),
	}, nil
}

// Resolve returns the count named by the first non-blank value, or the default when there is none.
func (s *BlockServiceImpl) Resolve(values []string) (int64, error) {
	for _, v := range values {
		if v == "" {
			continue
		}
		count, err := domain.ParseBlockCount(v)
		if err != nil {
			return 0, err
		}
		return count.Value(), nil
	}
	return s.defaultCount.Value(), nil
}

// ContentLength returns the exact body size for count blocks.
func (s *BlockServiceImpl) ContentLength(count int64) int64 {
	return domain.NewBlockCount(count).PayloadSize()
}

// WriteBlocks writes count blocks to w. Non-positive counts write nothing.
func (s *BlockServiceImpl) WriteBlocks(ctx context.Context, w io.Writer, count int64) (int64, error) {
	emitted := domain.NewBlockCount(count).Emitted()

	var written int64
	for i := int64(0); i < emitted; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return written, fmt.Errorf("block stream interrupted after %d of %d blocks: %w", i, emitted, err)
			}
		}
		n, err := w.Write(s.line)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write block %d of %d: %w", i+1, emitted, err)
		}
	}

	if s.logger.DebugEnabled() {
		s.logger.Debug("Block stream complete", "blocks", emitted, "bytes", written)
	}
	return written, nil
}
