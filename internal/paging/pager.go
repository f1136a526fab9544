package paging

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidPage   = errors.New("page must be 1 or greater")
	ErrCursorMissing = errors.New("previous page has not been fetched")
)

// Cursor marks the last document of a page: its sort key and its id, which
// breaks ties between documents with equal sort keys.
type Cursor struct {
	Value interface{}        `bson:"value"`
	ID    primitive.ObjectID `bson:"id"`
}

// State is the cached pagination state of one listing.
type State struct {
	Current int               `bson:"current"`
	HasMore bool              `bson:"hasMore"`
	Cursors map[string]Cursor `bson:"cursors"`
}

func newState() *State {
	return &State{HasMore: true, Cursors: map[string]Cursor{}}
}

func (s *State) cursor(page int) (Cursor, bool) {
	c, ok := s.Cursors[strconv.Itoa(page)]
	return c, ok
}

func (s *State) setCursor(page int, c Cursor) {
	if s.Cursors == nil {
		s.Cursors = map[string]Cursor{}
	}
	s.Cursors[strconv.Itoa(page)] = c
}

// Batch is what a query returns for one page. Scanned counts every document
// the query returned, including ones dropped from Items afterwards, and Last
// is the cursor of the last scanned document.
type Batch[T any] struct {
	Items   []T
	Scanned int
	Last    *Cursor
}

// FetchFunc runs the page query. after is nil for the first page.
type FetchFunc[T any] func(ctx context.Context, after *Cursor, limit int64) (Batch[T], error)

// Page is one page of results.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	HasMore bool `json:"hasMore"`
}

// Pager runs cursor-paginated queries with a fixed page size.
type Pager struct {
	store    StateStore
	pageSize int64
	locks    *keyedMutex
}

func NewPager(store StateStore, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pager{store: store, pageSize: int64(pageSize), locks: newKeyedMutex()}
}

func (p *Pager) PageSize() int { return int(p.pageSize) }

// lock serialises work on key, across processes when the store is a Locker.
func (p *Pager) lock(ctx context.Context, key string) (func(), error) {
	unlock := p.locks.lock(key)
	l, ok := p.store.(Locker)
	if !ok {
		return unlock, nil
	}
	release, err := l.Lock(ctx, key)
	if err != nil {
		unlock()
		return nil, err
	}
	return func() {
		release()
		unlock()
	}, nil
}

// Reset drops every cached cursor for key.
func (p *Pager) Reset(ctx context.Context, key string) error {
	unlock, err := p.lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return p.store.Delete(ctx, key)
}

// State returns the cached state for key, or a fresh one.
func (p *Pager) State(ctx context.Context, key string) (*State, error) {
	st, err := p.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return newState(), nil
	}
	return st, nil
}

// Fetch loads page number page of the listing identified by key. When reset is
// set all cached cursors are dropped first, so only page 1 can follow.
func Fetch[T any](ctx context.Context, p *Pager, key string, page int, reset bool, fetch FetchFunc[T]) (*Page[T], error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	unlock, err := p.lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	var st *State
	if reset {
		if err := p.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("reset %s: %w", key, err)
		}
		st = newState()
	} else {
		if st, err = p.State(ctx, key); err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
	}

	var after *Cursor
	if page > 1 {
		c, ok := st.cursor(page - 1)
		if !ok {
			return nil, ErrCursorMissing
		}
		after = &c
	}

	batch, err := fetch(ctx, after, p.pageSize)
	if err != nil {
		return nil, err
	}

	if batch.Scanned > 0 && batch.Last != nil {
		st.setCursor(page, *batch.Last)
	}
	st.HasMore = int64(batch.Scanned) == p.pageSize
	st.Current = page

	if err := p.store.Save(ctx, key, st); err != nil {
		return nil, fmt.Errorf("save %s: %w", key, err)
	}

	items := batch.Items
	if items == nil {
		items = make([]T, 0)
	}
	return &Page[T]{Items: items, Page: page, HasMore: st.HasMore}, nil
}
