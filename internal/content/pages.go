package content

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MarcoPoloResearchLab/aexsite/internal/cache"
	"github.com/MarcoPoloResearchLab/aexsite/internal/notion"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

// Page is a resolved page. Records are shared between callers and must not be mutated;
// a refresh always produces a new record.
type Page struct {
	ID             string         `json:"id"`
	Slug           string         `json:"slug"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	LastEditedTime string         `json:"lastEditedTime,omitempty"`
	Blocks         []notion.Block `json:"blocks"`
}

// PageBySlug resolves a page. A nil page with a nil error means no such page.
func (s *Service) PageBySlug(ctx context.Context, rawSlug string) (*Page, error) {
	key := slug.Normalize(rawSlug)
	return resolveCached(ctx, s, cacheNamePages, s.pages, &s.pageFlight, key, func(refreshCtx context.Context, generation cache.Generation) (*Page, error) {
		return s.refreshPage(refreshCtx, key, generation)
	})
}

func (s *Service) refreshPage(ctx context.Context, key string, generation cache.Generation) (*Page, error) {
	stale, hasStale := s.pages.ReadStale(key)

	table, err := s.Routes(ctx)
	if err != nil {
		s.logError(opResolvePage, reasonRoutesFailed, err, zap.String(fieldSlug, key))
		if hasStale {
			return stale, nil
		}
		return nil, err
	}

	route, ok := table.Lookup(key)
	if !ok {
		s.storePage(key, nil, generation)
		return nil, nil
	}

	var (
		metadata notion.Page
		blocks   []notion.Block
	)
	if hasStale && stale != nil && notion.CompactID(stale.ID) == notion.CompactID(route.PageID) {
		metadata, err = s.retrievePage(ctx, route.PageID)
		if err == nil && metadata.IsFull() {
			if metadata.LastEditedTime != "" && metadata.LastEditedTime == stale.LastEditedTime {
				blocks = stale.Blocks
				s.logger.Debug("page unchanged; reusing block tree",
					zap.String(fieldSlug, key),
					zap.String(fieldPageID, route.PageID))
			} else {
				blocks, err = s.loadBlocks(ctx, route.PageID)
			}
		}
	} else {
		metadata, blocks, err = s.fetchPageAndBlocks(ctx, route.PageID)
	}

	if err != nil {
		// A stale record outlives any failure, a backend 404 included.
		if notion.IsNotFound(err) && !hasStale {
			s.logger.Warn("routed page is missing from the backend",
				zap.String(fieldSlug, key),
				zap.String(fieldPageID, route.PageID))
			s.storePage(key, nil, generation)
			return nil, nil
		}
		s.logError(opResolvePage, reasonPageFailed, err,
			zap.String(fieldSlug, key),
			zap.String(fieldPageID, route.PageID))
		if hasStale {
			return stale, nil
		}
		return nil, newServiceError(opResolvePage, reasonPageFailed, err)
	}
	if !metadata.IsFull() {
		s.storePage(key, nil, generation)
		return nil, nil
	}

	title := route.Title
	if title == "" {
		title = extractTitle(metadata)
	}
	description := route.Description
	if description == "" {
		description = s.extractDescription(metadata)
	}

	page := &Page{
		ID:             metadata.ID,
		Slug:           route.Slug,
		Title:          title,
		Description:    description,
		LastEditedTime: metadata.LastEditedTime,
		Blocks:         blocks,
	}
	s.storePage(key, page, generation)
	return page, nil
}

func (s *Service) storePage(key string, page *Page, generation cache.Generation) {
	if !s.pages.WriteAt(key, page, generation) && s.pages.Enabled() {
		s.logger.Debug("page invalidated during refresh; result not cached", zap.String(fieldSlug, key))
	}
}

// fetchPageAndBlocks loads metadata and the block tree concurrently.
func (s *Service) fetchPageAndBlocks(ctx context.Context, pageID string) (notion.Page, []notion.Block, error) {
	var (
		metadata notion.Page
		blocks   []notion.Block
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		metadata, err = s.retrievePage(groupCtx, pageID)
		return err
	})
	group.Go(func() error {
		var err error
		blocks, err = s.loadBlocks(groupCtx, pageID)
		return err
	})
	if err := group.Wait(); err != nil {
		return notion.Page{}, nil, err
	}
	return metadata, blocks, nil
}

func (s *Service) retrievePage(ctx context.Context, pageID string) (notion.Page, error) {
	page, err := s.client.RetrievePage(ctx, pageID)
	s.metrics.observeBackend("retrieve_page", err)
	return page, err
}
