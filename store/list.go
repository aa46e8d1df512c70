package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
)

// ListController owns the search box and pager of the product list.
type ListController struct {
	ctx      context.Context
	store    *Store
	debounce *Debouncer
	pageSize int
	logger   *gecho.Logger

	mu     sync.Mutex
	search string
	page   int
}

func NewListController(ctx context.Context, s *Store, logger *gecho.Logger, pageSize int, searchDelay time.Duration) *ListController {
	if pageSize < 1 {
		pageSize = 10
	}
	return &ListController{
		ctx:      ctx,
		store:    s,
		debounce: NewDebouncer(searchDelay),
		pageSize: pageSize,
		logger:   logger,
		page:     1,
	}
}

func (c *ListController) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

func (c *ListController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetSearch schedules a fetch of page 1 for query once typing has paused.
func (c *ListController) SetSearch(query string) {
	c.debounce.Trigger(func() {
		c.mu.Lock()
		c.search = query
		c.page = 1
		c.mu.Unlock()

		c.fetch()
	})
}

// SetPage fetches page immediately with the current search.
func (c *ListController) SetPage(page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()

	return c.fetch()
}

func (c *ListController) PrevPage() error {
	return c.SetPage(c.Page() - 1)
}

func (c *ListController) NextPage() error {
	page := c.Page() + 1
	if total := c.store.State().TotalPages; page > total {
		page = max(total, 1)
	}
	return c.SetPage(page)
}

// Refresh refetches the current page.
func (c *ListController) Refresh() error {
	return c.fetch()
}

// Close cancels a pending search.
func (c *ListController) Close() {
	c.debounce.Stop()
}

func (c *ListController) fetch() error {
	c.mu.Lock()
	search, page := c.search, c.page
	c.mu.Unlock()

	err := c.store.FetchProducts(c.ctx, search, page, c.pageSize)
	if err != nil && !errors.Is(err, ErrStale) {
		c.logger.Warn("Failed to fetch products", gecho.Field("error", err), gecho.Field("page", page))
		return err
	}
	return nil
}
