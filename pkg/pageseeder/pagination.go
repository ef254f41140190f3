package pageseeder

import (
	"context"
	"iter"
)

// Cursor marks that more pages exist. A nil cursor requests the first page.
type Cursor struct {
	Page int
}

// Page is one page of a list operation.
type Page[T any] struct {
	Items []T
	// Next is nil on the last page.
	Next *Cursor
	// Total is the total number of items across all pages, when known.
	Total int
}

// PageFetcher fetches a single page of a list operation.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, cursor *Cursor) (*Page[T], error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, cursor *Cursor) (*Page[T], error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, cursor *Cursor) (*Page[T], error) {
	return f(ctx, cursor)
}

// PaginationOptions bounds multi-page fetches.
type PaginationOptions struct {
	// PageSize is advisory; fetchers that support it pass it to the server.
	PageSize int
	// MaxPages stops after this many pages. Zero means no limit.
	MaxPages int
}

// DefaultPaginationOptions returns default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// PaginationIterator walks the items of every page, fetching pages on demand.
// It is not safe for concurrent use.
type PaginationIterator[T any] struct {
	ctx     context.Context
	fetcher PageFetcher[T]

	buffer  []T
	next    *Cursor
	started bool
	err     error
}

// NewPaginationIterator creates an iterator that starts at the first page.
func NewPaginationIterator[T any](ctx context.Context, fetcher PageFetcher[T]) *PaginationIterator[T] {
	return &PaginationIterator[T]{
		ctx:     ctx,
		fetcher: fetcher,
	}
}

// HasNext reports whether Next will return an item. It may fetch a page.
// A failed fetch makes HasNext return true so that Next reports the error.
func (it *PaginationIterator[T]) HasNext() bool {
	if len(it.buffer) > 0 || it.err != nil {
		return true
	}

	for len(it.buffer) == 0 && (!it.started || it.next != nil) {
		it.fetch()

		if it.err != nil {
			return true
		}
	}

	return len(it.buffer) > 0
}

// Next returns the next item, ErrNoMoreItems when exhausted, or the error of
// the failed page fetch.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		return zero, ErrNoMoreItems
	}

	if it.err != nil {
		err := it.err
		it.err = nil
		it.next = nil

		return zero, err
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

// All collects every remaining item.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach calls fn for every remaining item and stops at the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Seq returns the remaining items as a range-over-func sequence. Iteration
// stops after the first error is yielded.
func (it *PaginationIterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			item, err := it.Next()
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

func (it *PaginationIterator[T]) fetch() {
	cursor := it.next
	it.started = true
	it.next = nil

	page, err := it.fetcher.FetchPage(it.ctx, cursor)
	if err != nil {
		it.err = err

		return
	}

	it.buffer = append(it.buffer, page.Items...)
	it.next = page.Next
}

// FetchAllPages fetches every page, or up to opts.MaxPages pages.
func FetchAllPages[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions) ([]T, error) {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	var (
		all    []T
		cursor *Cursor
	)

	for pages := 0; opts.MaxPages <= 0 || pages < opts.MaxPages; pages++ {
		page, err := fetcher.FetchPage(ctx, cursor)
		if err != nil {
			return all, err
		}

		all = append(all, page.Items...)

		if page.Next == nil {
			break
		}

		cursor = page.Next
	}

	return all, nil
}

// PageResult is a page delivered by StreamPages.
type PageResult[T any] struct {
	Items []T
	Page  int
	Err   error
}

// StreamPages fetches pages in a goroutine and delivers them on the returned
// channel, which is closed after the last page, the first error, or when ctx
// is done. The goroutine blocks until each page is received, so a consumer
// that stops reading early must cancel ctx or drain the channel.
func StreamPages[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions) <-chan PageResult[T] {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	out := make(chan PageResult[T])

	go func() {
		defer close(out)

		var cursor *Cursor

		for n := 1; opts.MaxPages <= 0 || n <= opts.MaxPages; n++ {
			if ctx.Err() != nil {
				return
			}

			page, err := fetcher.FetchPage(ctx, cursor)

			result := PageResult[T]{Page: n, Err: err}
			if err == nil {
				result.Items = page.Items
			}

			select {
			case out <- result:
			case <-ctx.Done():
				return
			}

			if err != nil || page.Next == nil {
				return
			}

			cursor = page.Next
		}
	}()

	return out
}
