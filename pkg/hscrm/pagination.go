package hscrm

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// Page is one server page: its records and the continuation token. An
// empty After marks the final page.
type Page[T any] struct {
	Results []T
	After   string
}

// PageFetcher fetches the page that starts at the after token. The first
// page is requested with the start token, "" by default.
type PageFetcher[T any] func(ctx context.Context, after string) (*Page[T], error)

// Paginator walks a cursor-paginated call one batch at a time. It is lazy
// and one-shot: pages are fetched only when asked for and a finished
// paginator cannot be restarted. The only state kept between pages is the
// continuation token.
type Paginator[T any] struct {
	fetch   PageFetcher[T]
	after   string
	done    bool
	fetched int
}

// NewPaginator creates a paginator starting at the given token.
func NewPaginator[T any](fetch PageFetcher[T], start string) *Paginator[T] {
	return &Paginator[T]{
		fetch: fetch,
		after: start,
	}
}

// HasNext reports whether another fetch may yield a batch. It can return
// true once more than there are batches, since an empty final page is only
// discovered by fetching it.
func (p *Paginator[T]) HasNext() bool {
	return !p.done
}

// PagesFetched returns the number of pages requested successfully.
func (p *Paginator[T]) PagesFetched() int {
	return p.fetched
}

// Next fetches the next batch. It returns ErrPaginatorExhausted once the
// walk is finished. A failed fetch leaves the paginator where it was, so
// calling Next again requests the same page.
func (p *Paginator[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, ErrPaginatorExhausted
	}

	page, err := p.fetch(ctx, p.after)
	if err != nil {
		return nil, err
	}

	p.fetched++

	if page == nil || len(page.Results) == 0 {
		p.done = true

		return nil, ErrPaginatorExhausted
	}

	if page.After == "" || page.After == p.after {
		p.done = true
	}

	p.after = page.After

	return page.Results, nil
}

// Batches returns the remaining batches as a sequence. Iteration stops at
// the first error, which is yielded with a nil batch.
func (p *Paginator[T]) Batches(ctx context.Context) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for {
			batch, err := p.Next(ctx)
			if errors.Is(err, ErrPaginatorExhausted) {
				return
			}

			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(batch, nil) {
				return
			}
		}
	}
}

// ForEach calls fn for every remaining batch.
func (p *Paginator[T]) ForEach(ctx context.Context, fn func(batch []T) error) error {
	for batch, err := range p.Batches(ctx) {
		if err != nil {
			return err
		}

		err = fn(batch)
		if err != nil {
			return err
		}
	}

	return nil
}

// All drains the paginator into a single slice.
func (p *Paginator[T]) All(ctx context.Context) ([]T, error) {
	var all []T

	err := p.ForEach(ctx, func(batch []T) error {
		all = append(all, batch...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// BatchReader reads full records for the given ids.
type BatchReader func(ctx context.Context, ids []string) ([]Record, error)

// TwoPhaseFetcher joins an id search with a batch read. The records of a
// page are returned in search order and correspond one to one, by id, to
// the search results; if the batch read fails or returns a different set of
// records the whole page fails.
func TwoPhaseFetcher(search PageFetcher[Record], read BatchReader) PageFetcher[Record] {
	return func(ctx context.Context, after string) (*Page[Record], error) {
		searched, err := search(ctx, after)
		if err != nil {
			return nil, err
		}

		if searched == nil || len(searched.Results) == 0 {
			return &Page[Record]{}, nil
		}

		ids := make([]string, len(searched.Results))
		for i, record := range searched.Results {
			ids[i] = record.ID
		}

		records, err := read(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("reading batch of %d records: %w", len(ids), err)
		}

		ordered, err := alignByID(ids, records)
		if err != nil {
			return nil, err
		}

		return &Page[Record]{Results: ordered, After: searched.After}, nil
	}
}

func alignByID(ids []string, records []Record) ([]Record, error) {
	if len(records) != len(ids) {
		return nil, fmt.Errorf("%w: searched %d, read %d", ErrBatchReadMismatch, len(ids), len(records))
	}

	byID := make(map[string]Record, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	ordered := make([]Record, 0, len(ids))

	for _, id := range ids {
		record, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: missing record %s", ErrBatchReadMismatch, id)
		}

		ordered = append(ordered, record)
	}

	return ordered, nil
}
