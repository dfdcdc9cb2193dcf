package shopify

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultFirstPage = 1
	defaultPageParam = "page"
	defaultPageDelay = 500 * time.Millisecond
	pageSizeParam    = "limit"
)

// Entry is one record produced by a Paginator. Index counts records across
// all pages of one iteration; Key is the record's own id.
type Entry[T Record] struct {
	Index  int
	Key    string
	Record T
}

type paginatorConfig struct {
	firstPage int
	pageParam string
	pageSize  int
	delay     time.Duration
	resource  string
	logger    *log.Logger
	observer  Observer
	sleep     func(ctx context.Context, d time.Duration) error
}

// PaginatorOption configures the Paginator.
type PaginatorOption func(*paginatorConfig)

// WithFirstPage overrides the index of the first page (default 1).
func WithFirstPage(n int) PaginatorOption {
	return func(c *paginatorConfig) {
		c.firstPage = n
	}
}

// WithPageParam overrides the query parameter carrying the page number.
func WithPageParam(name string) PaginatorOption {
	return func(c *paginatorConfig) {
		c.pageParam = name
	}
}

// WithPageSize sets the limit parameter sent with every page request.
func WithPageSize(size int) PaginatorOption {
	return func(c *paginatorConfig) {
		c.pageSize = size
	}
}

// WithPageDelay overrides the cooldown between page fetches (default 500ms).
// Zero disables it.
func WithPageDelay(d time.Duration) PaginatorOption {
	return func(c *paginatorConfig) {
		c.delay = d
	}
}

// WithResourceName labels the pages in logs and metrics.
func WithResourceName(name string) PaginatorOption {
	return func(c *paginatorConfig) {
		c.resource = name
	}
}

// WithPaginatorLogger sets the logger.
func WithPaginatorLogger(l *log.Logger) PaginatorOption {
	return func(c *paginatorConfig) {
		c.logger = l
	}
}

// WithPaginatorObserver sets the instrumentation hook.
func WithPaginatorObserver(o Observer) PaginatorOption {
	return func(c *paginatorConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithSleepFunc overrides how the cooldown is waited, for testing.
func WithSleepFunc(f func(ctx context.Context, d time.Duration) error) PaginatorOption {
	return func(c *paginatorConfig) {
		c.sleep = f
	}
}

// Paginator walks a page-numbered collection. It holds no iteration state:
// every call to All or Entries starts again at the first page.
type Paginator[T Record] struct {
	doer        Doer
	req         RequestDescriptor
	transformer Transformer[T]
	cfg         paginatorConfig
}

// NewPaginator creates a Paginator that issues req once per page and decodes
// each page with transformer.
func NewPaginator[T Record](
	doer Doer,
	req RequestDescriptor,
	transformer Transformer[T],
	opts ...PaginatorOption,
) *Paginator[T] {
	cfg := paginatorConfig{
		firstPage: defaultFirstPage,
		pageParam: defaultPageParam,
		delay:     defaultPageDelay,
		observer:  nopObserver{},
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Paginator[T]{doer: doer, req: req, transformer: transformer, cfg: cfg}
}

// Request returns the first-page request descriptor.
func (p *Paginator[T]) Request() RequestDescriptor {
	return p.req
}

// All yields the records of every page in server order. Iteration ends on
// the first empty page. A fetch or decode failure is yielded once as the
// error and ends the iteration.
func (p *Paginator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for e, err := range p.Entries(ctx) {
			if !yield(e.Record, err) {
				return
			}
		}
	}
}

// pageCursor is the position of one iteration. It is owned by the closure
// returned from Entries and never shared.
type pageCursor[T Record] struct {
	page  int
	items []T
	pos   int
	index int
}

// Entries is like All but also yields each record's absolute index and id.
func (p *Paginator[T]) Entries(ctx context.Context) iter.Seq2[Entry[T], error] {
	return func(yield func(Entry[T], error) bool) {
		cur := pageCursor[T]{page: p.cfg.firstPage}
		for fetched := false; ; fetched = true {
			if fetched && p.cfg.delay > 0 {
				if err := p.cfg.sleep(ctx, p.cfg.delay); err != nil {
					yield(Entry[T]{}, fmt.Errorf("waiting before page %d: %w", cur.page, err))
					return
				}
			}

			items, err := p.fetch(ctx, cur.page)
			if err != nil {
				yield(Entry[T]{}, fmt.Errorf("fetching page %d: %w", cur.page, err))
				return
			}
			if len(items) == 0 {
				p.debug("pagination exhausted", "page", cur.page, "records", cur.index)
				return
			}

			cur.items, cur.pos = items, 0
			for cur.pos < len(cur.items) {
				rec := cur.items[cur.pos]
				e := Entry[T]{Index: cur.index, Key: rec.RecordID(), Record: rec}
				cur.pos++
				cur.index++
				if !yield(e, nil) {
					return
				}
			}
			cur.page++
		}
	}
}

func (p *Paginator[T]) fetch(ctx context.Context, page int) ([]T, error) {
	req := p.req.WithQuery(p.cfg.pageParam, strconv.Itoa(page))
	if p.cfg.pageSize > 0 {
		req = req.WithQuery(pageSizeParam, strconv.Itoa(p.cfg.pageSize))
	}

	resp, err := p.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := p.transformer.FromArrayResponse(resp)
	if err != nil {
		return nil, err
	}

	p.cfg.observer.ObservePage(p.cfg.resource, len(items))
	p.debug("fetched page", "page", page, "records", len(items))
	return items, nil
}

func (p *Paginator[T]) debug(msg string, keyvals ...any) {
	if p.cfg.logger == nil {
		return
	}
	if p.cfg.resource != "" {
		keyvals = append(keyvals, "resource", p.cfg.resource)
	}
	p.cfg.logger.Debug(msg, keyvals...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
