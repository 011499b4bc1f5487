package content

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
)

// loadBlocks fetches the full block tree under rootID. Nested children are fetched one
// depth level at a time with at most s.concurrency requests in flight; sibling order
// and pagination order are preserved.
func (s *Service) loadBlocks(ctx context.Context, rootID string) ([]notion.Block, error) {
	roots, err := s.listChildren(ctx, rootID)
	if err != nil {
		return nil, err
	}

	level := collectExpandable(roots)
	for depth := 1; len(level) > 0; depth++ {
		if depth > s.maxDepth {
			s.logError(opLoadBlocks, reasonDepthExceeded, nil,
				zap.String(fieldPageID, rootID),
				zap.Int("max_depth", s.maxDepth),
				zap.Int("dropped_parents", len(level)))
			break
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(s.concurrency)
		for _, parent := range level {
			group.Go(func() error {
				children, err := s.listChildren(groupCtx, parent.ID)
				if err != nil {
					return err
				}
				parent.Children = children
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}

		var next []*notion.Block
		for _, parent := range level {
			next = append(next, collectExpandable(parent.Children)...)
		}
		level = next
	}
	return roots, nil
}

func collectExpandable(blocks []notion.Block) []*notion.Block {
	var expandable []*notion.Block
	for index := range blocks {
		if blocks[index].HasChildren {
			expandable = append(expandable, &blocks[index])
		}
	}
	return expandable
}

// listChildren drains every cursor page of a block's direct children.
func (s *Service) listChildren(ctx context.Context, blockID string) ([]notion.Block, error) {
	var (
		blocks []notion.Block
		cursor string
	)
	for {
		list, err := s.client.ListBlockChildren(ctx, blockID, cursor)
		s.metrics.observeBackend("list_block_children", err)
		if err != nil {
			return nil, err
		}
		for _, block := range list.Results {
			if block.IsFull() {
				block.Children = nil
				blocks = append(blocks, block)
			}
		}
		if !list.HasMore || list.NextCursor == "" {
			return blocks, nil
		}
		cursor = list.NextCursor
	}
}
