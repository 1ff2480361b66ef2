package client

import "context"

// pageFetcher loads one page of results. cursor is empty on the first call;
// it returns the page's items, the cursor of the last item, and whether a
// further page exists.
type pageFetcher[T any] func(ctx context.Context, cursor string) (items []T, next string, hasNext bool, err error)

// Cursor walks a paginated listing lazily. Pages are fetched only when the
// buffered items run out, so abandoning the cursor early issues no further
// requests.
type Cursor[T any] struct {
	fetch   pageFetcher[T]
	buf     []T
	next    string
	hasNext bool
	started bool
}

func newCursor[T any](fetch pageFetcher[T]) *Cursor[T] {
	return &Cursor[T]{fetch: fetch}
}

// Next returns the next item, fetching the following page when needed. It
// returns nil once the listing is exhausted.
func (c *Cursor[T]) Next(ctx context.Context) (*T, error) {
	for len(c.buf) == 0 {
		if c.started && !c.hasNext {
			return nil, nil
		}
		items, next, hasNext, err := c.fetch(ctx, c.next)
		if err != nil {
			return nil, err
		}
		c.started = true
		c.next, c.hasNext = next, hasNext
		c.buf = items
		if len(items) == 0 && !hasNext {
			return nil, nil
		}
	}
	item := c.buf[0]
	c.buf = c.buf[1:]
	return &item, nil
}

// Take collects up to n items from the cursor. n < 0 drains the listing.
func (c *Cursor[T]) Take(ctx context.Context, n int) ([]T, error) {
	var out []T
	for n < 0 || len(out) < n {
		item, err := c.Next(ctx)
		if err != nil {
			return out, err
		}
		if item == nil {
			return out, nil
		}
		out = append(out, *item)
	}
	return out, nil
}
