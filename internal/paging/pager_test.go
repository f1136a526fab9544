package paging

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type row struct {
	id    primitive.ObjectID
	key   int
	admin bool
}

// fakeSource serves rows sorted by key ascending and records the cursors it was asked for.
type fakeSource struct {
	rows  []row
	calls []*Cursor
}

func newFakeSource(n int) *fakeSource {
	src := &fakeSource{}
	for i := 0; i < n; i++ {
		src.rows = append(src.rows, row{id: primitive.NewObjectID(), key: i})
	}
	return src
}

func (f *fakeSource) fetch(ctx context.Context, after *Cursor, limit int64) (Batch[int], error) {
	f.calls = append(f.calls, after)
	start := 0
	if after != nil {
		for i, r := range f.rows {
			if r.id == after.ID {
				start = i + 1
				break
			}
		}
	}
	end := start + int(limit)
	if end > len(f.rows) {
		end = len(f.rows)
	}
	var b Batch[int]
	for _, r := range f.rows[start:end] {
		b.Scanned++
		if !r.admin {
			b.Items = append(b.Items, r.key)
		}
		b.Last = &Cursor{Value: int32(r.key), ID: r.id}
	}
	return b, nil
}

func stores(t *testing.T) map[string]StateStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]StateStore{
		"memory": NewMemoryStateStore(time.Hour),
		"redis":  NewRedisStateStore(client, time.Hour),
	}
}

func TestFetch_WalksPagesWithCachedCursors(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			src := newFakeSource(7)
			p := NewPager(store, 3)

			page, err := Fetch(ctx, p, "s1:users", 1, false, src.fetch)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, page.Items)
			assert.True(t, page.HasMore)
			assert.Nil(t, src.calls[0])

			page, err = Fetch(ctx, p, "s1:users", 2, false, src.fetch)
			require.NoError(t, err)
			assert.Equal(t, []int{3, 4, 5}, page.Items)
			assert.True(t, page.HasMore)
			require.NotNil(t, src.calls[1])
			assert.Equal(t, src.rows[2].id, src.calls[1].ID)

			page, err = Fetch(ctx, p, "s1:users", 3, false, src.fetch)
			require.NoError(t, err)
			assert.Equal(t, []int{6}, page.Items)
			assert.False(t, page.HasMore)

			st, err := p.State(ctx, "s1:users")
			require.NoError(t, err)
			assert.Equal(t, 3, st.Current)
			assert.Len(t, st.Cursors, 3)
		})
	}
}

func TestFetch_GoingBackReusesCursor(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(6)
	p := NewPager(NewMemoryStateStore(time.Hour), 2)

	for page := 1; page <= 3; page++ {
		_, err := Fetch(ctx, p, "k", page, false, src.fetch)
		require.NoError(t, err)
	}

	page, err := Fetch(ctx, p, "k", 2, false, src.fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, page.Items)
	assert.Equal(t, src.rows[1].id, src.calls[len(src.calls)-1].ID)
}

func TestFetch_MissingCursorDoesNotQuery(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(10)
	p := NewPager(NewMemoryStateStore(time.Hour), 3)

	_, err := Fetch(ctx, p, "k", 3, false, src.fetch)
	assert.ErrorIs(t, err, ErrCursorMissing)
	assert.Empty(t, src.calls)
}

func TestFetch_ResetInvalidatesCursors(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			src := newFakeSource(10)
			p := NewPager(store, 3)

			_, err := Fetch(ctx, p, "k", 1, false, src.fetch)
			require.NoError(t, err)
			_, err = Fetch(ctx, p, "k", 2, false, src.fetch)
			require.NoError(t, err)

			_, err = Fetch(ctx, p, "k", 2, true, src.fetch)
			assert.ErrorIs(t, err, ErrCursorMissing)

			page, err := Fetch(ctx, p, "k", 1, true, src.fetch)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 2}, page.Items)

			st, err := p.State(ctx, "k")
			require.NoError(t, err)
			assert.Len(t, st.Cursors, 1)
		})
	}
}

func TestFetch_HasMoreCountsFilteredRows(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(4)
	src.rows[1].admin = true
	p := NewPager(NewMemoryStateStore(time.Hour), 2)

	page, err := Fetch(ctx, p, "k", 1, false, src.fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, page.Items)
	assert.True(t, page.HasMore)

	page, err = Fetch(ctx, p, "k", 2, false, src.fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, page.Items)
}

func TestFetch_EmptyPage(t *testing.T) {
	ctx := context.Background()
	p := NewPager(NewMemoryStateStore(time.Hour), 5)
	src := &fakeSource{}

	page, err := Fetch(ctx, p, "k", 1, false, src.fetch)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)

	st, err := p.State(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, st.Cursors)
}

func TestFetch_InvalidPageAndQueryError(t *testing.T) {
	ctx := context.Background()
	p := NewPager(NewMemoryStateStore(time.Hour), 5)

	_, err := Fetch(ctx, p, "k", 0, false, newFakeSource(1).fetch)
	assert.ErrorIs(t, err, ErrInvalidPage)

	boom := fmt.Errorf("boom")
	_, err = Fetch(ctx, p, "k", 1, false, func(context.Context, *Cursor, int64) (Batch[int], error) {
		return Batch[int]{}, boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := p.State(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Current)
}

func TestFetch_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(6)
	p := NewPager(NewMemoryStateStore(time.Hour), 2)

	_, err := Fetch(ctx, p, "a", 1, false, src.fetch)
	require.NoError(t, err)

	_, err = Fetch(ctx, p, "b", 2, false, src.fetch)
	assert.ErrorIs(t, err, ErrCursorMissing)
}

// raceRefetch re-fetches page 1 slowly through first while second asks for
// page 2 of the same key, then checks page 3 is still reachable.
func raceRefetch(t *testing.T, first, second *Pager) {
	t.Helper()
	ctx := context.Background()
	src := newFakeSource(9)

	_, err := Fetch(ctx, first, "s1:users", 1, false, src.fetch)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(ctx context.Context, after *Cursor, limit int64) (Batch[int], error) {
		close(started)
		<-release
		return src.fetch(ctx, after, limit)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = Fetch(ctx, first, "s1:users", 1, false, slow)
	}()
	<-started
	go func() {
		defer wg.Done()
		_, errs[1] = Fetch(ctx, second, "s1:users", 2, false, src.fetch)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	page, err := Fetch(ctx, first, "s1:users", 3, false, src.fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7, 8}, page.Items)
}

func TestFetch_ConcurrentFetchesKeepCursors(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p := NewPager(store, 3)
			raceRefetch(t, p, p)
		})
	}

	t.Run("redis shared by two pagers", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		store := NewRedisStateStore(client, time.Hour)

		raceRefetch(t, NewPager(store, 3), NewPager(store, 3))
		assert.False(t, mr.Exists("lock:paging:s1:users"))
	})
}

func TestRedisStateStore_LockWaitsForRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStateStore(client, time.Hour)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:paging:k"))

	short, cancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer cancel()
	_, err = store.Lock(short, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists("lock:paging:k"))

	unlock, err = store.Lock(ctx, "k")
	require.NoError(t, err)
	unlock()
}

func TestMemoryStateStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStateStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "k", &State{Current: 1}))
	st, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, st)

	now = now.Add(2 * time.Minute)
	st, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestRedisStateStore_KeepsCursorTypes(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisStateStore(client, time.Hour)

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	id := primitive.NewObjectID()
	st := newState()
	st.setCursor(1, Cursor{Value: created, ID: id})
	require.NoError(t, s.Save(ctx, "k", st))

	assert.True(t, mr.Exists("paging:k"))

	loaded, err := s.Load(ctx, "k")
	require.NoError(t, err)
	c, ok := loaded.cursor(1)
	require.True(t, ok)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, primitive.NewDateTimeFromTime(created), c.Value)

	require.NoError(t, s.Delete(ctx, "k"))
	loaded, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestAfterFilter(t *testing.T) {
	assert.Empty(t, AfterFilter("name_lower", Ascending, nil))

	id := primitive.NewObjectID()
	f := AfterFilter("name_lower", Ascending, &Cursor{Value: "apple", ID: id})
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Contains(t, fmt.Sprint(or[0]), "$gt")

	f = AfterFilter("profile.created_at", Descending, &Cursor{Value: 1, ID: id})
	assert.Contains(t, fmt.Sprint(f), "$lt")
}
