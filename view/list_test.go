package view

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Forge/gateway"
	"Forge/gateway/gatewaytest"
	"Forge/pkg/response"
	"Forge/schema"
)

type countRecorder struct {
	mu     sync.Mutex
	counts []int
}

func (r *countRecorder) record(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, n)
}

func (r *countRecorder) all() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counts...)
}

func ids(items []Comment) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

// seedParents 为每种内容建一条 id 相同的记录，用来检查评论不会串表
func seedParents(f *gatewaytest.Fake, id string) {
	for _, k := range schema.ParentKinds() {
		r, _ := schema.ContentRouteFor(k)
		f.Seed(r.Table, gateway.Row{"id": id, "user_id": "owner", "title": k.String()})
	}
}

func TestListLoadIsIdempotent(t *testing.T) {
	f := gatewaytest.New()
	f.Seed("comments",
		gateway.Row{"id": "c1", "post_id": "p1", "user_id": "a", "content": "first"},
		gateway.Row{"id": "c2", "post_id": "p2", "user_id": "a", "content": "elsewhere"},
		gateway.Row{"id": "c3", "post_id": "p1", "user_id": "b", "content": "second"},
		gateway.Row{"id": "c4", "post_id": "p1", "user_id": "c", "content": "third"},
	)
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)

	first := th.Load(context.Background())
	second := th.Load(context.Background())
	assert.Equal(t, []string{"c1", "c3", "c4"}, ids(first))
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, "second", second[1].Body)
	assert.Equal(t, schema.KindPost, second[1].ParentKind)
}

func TestListOrderStableOnEqualTimestamps(t *testing.T) {
	f := gatewaytest.New()
	same := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.Seed("comments",
		gateway.Row{"id": "c3", "post_id": "p1", "user_id": "a", "content": "x", "created_at": same},
		gateway.Row{"id": "c1", "post_id": "p1", "user_id": "b", "content": "y", "created_at": same},
		gateway.Row{"id": "c0", "post_id": "p1", "user_id": "c", "content": "z", "created_at": same.Add(-time.Minute)},
		gateway.Row{"id": "c2", "post_id": "p1", "user_id": "d", "content": "w", "created_at": same},
	)
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []string{"c0", "c1", "c2", "c3"}, ids(th.Load(context.Background())))
	}

	f.Seed("posts",
		gateway.Row{"id": "b", "user_id": "u", "title": "t", "created_at": same},
		gateway.Row{"id": "a", "user_id": "u", "title": "t", "created_at": same},
	)
	feed, err := NewFeed(f, schema.KindPost, "", 0)
	require.NoError(t, err)
	items := feed.Load(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
}

func TestThreadRoutingIsolation(t *testing.T) {
	f := gatewaytest.New()
	seedParents(f, "X1")
	ctx := context.Background()

	threads := map[schema.ParentKind]*Thread{}
	for _, k := range schema.ParentKinds() {
		th, err := NewThread(f, k, "X1")
		require.NoError(t, err)
		threads[k] = th
	}

	for _, k := range schema.ParentKinds() {
		th := threads[k]
		th.SetDraft("comment on " + k.String())
		c, err := th.Submit(ctx, "author")
		require.NoError(t, err, k.String())
		assert.Equal(t, "X1", c.ParentID)

		route, _ := schema.CommentRouteFor(k)
		rows := f.Rows(route.Table)
		require.Len(t, rows, 1, route.Table)
		assert.Equal(t, "X1", rows[0].String(route.ParentCol))
	}

	for _, k := range schema.ParentKinds() {
		items := threads[k].Load(ctx)
		require.Len(t, items, 1)
		assert.Equal(t, "comment on "+k.String(), items[0].Body)
	}

	share := threads[schema.KindShare].Items()[0]
	n, err := threads[schema.KindBuild].Remove(ctx, share.ID, "author")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.Rows("share_comments"), 1)
}

func TestThreadReloadsOnNotificationWithUnchangedCount(t *testing.T) {
	f := gatewaytest.New()
	f.Seed("share_comments",
		gateway.Row{"share_id": "S1", "user_id": "a", "content": "one"},
		gateway.Row{"share_id": "S1", "user_id": "b", "content": "two"},
	)
	th, err := NewThread(f, schema.KindShare, "S1")
	require.NoError(t, err)

	rec := &countRecorder{}
	th.OnCount(rec.record)
	require.NoError(t, th.Mount(context.Background()))
	defer th.Unmount()
	require.Equal(t, []int{2}, rec.all())

	queries := f.CallCount(gatewaytest.OpQuery)
	f.Emit(gateway.ChangeEvent{Table: "share_comments", Op: gateway.ChangeUpdate, Row: gateway.Row{"share_id": "S1"}})

	require.Eventually(t, func() bool { return len(rec.all()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{2, 2}, rec.all())
	assert.Equal(t, queries+1, f.CallCount(gatewaytest.OpQuery))

	f.Emit(gateway.ChangeEvent{Table: "share_comments", Op: gateway.ChangeInsert, Row: gateway.Row{"share_id": "S2"}})
	f.Emit(gateway.ChangeEvent{Table: "build_comments", Op: gateway.ChangeInsert, Row: gateway.Row{"build_id": "S1"}})
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, rec.all(), 2)
}

func TestThreadSubmitValidation(t *testing.T) {
	f := gatewaytest.New()
	seedParents(f, "p1")
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)
	ctx := context.Background()

	th.SetDraft("   \n\t ")
	_, err = th.Submit(ctx, "me")
	assert.ErrorIs(t, err, response.ErrValidation)

	th.SetDraft(strings.Repeat("é", MaxCommentRunes+1))
	_, err = th.Submit(ctx, "me")
	assert.ErrorIs(t, err, response.ErrValidation)

	th.SetDraft("hello")
	_, err = th.Submit(ctx, "")
	assert.ErrorIs(t, err, response.ErrAuthRequired)

	assert.Equal(t, 0, f.CallCount())
	assert.Equal(t, "hello", th.Draft())

	th.SetDraft(strings.Repeat("é", MaxCommentRunes))
	_, err = th.Submit(ctx, "me")
	assert.NoError(t, err)
}

func TestThreadConcurrentSubmitBodies(t *testing.T) {
	f := gatewaytest.New()
	seedParents(f, "p1")
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)
	th.SetDraft("untouched draft")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := th.SubmitBody(context.Background(), "me", fmt.Sprintf("body-%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := map[string]int{}
	for _, r := range f.Rows("comments") {
		seen[r.String("content")]++
	}
	require.Len(t, seen, n)
	for body, times := range seen {
		assert.Equal(t, 1, times, body)
	}
	assert.Equal(t, "untouched draft", th.Draft())
}

func TestThreadSubmitMissingParent(t *testing.T) {
	f := gatewaytest.New()
	th, err := NewThread(f, schema.KindAINews, "gone")
	require.NoError(t, err)

	th.SetDraft("still here?")
	_, err = th.Submit(context.Background(), "me")
	assert.ErrorIs(t, err, response.ErrNotFound)
	assert.Equal(t, "still here?", th.Draft())
	assert.Equal(t, 0, f.CallCount(gatewaytest.OpInsert))
}

func TestThreadSubmitFailureKeepsDraft(t *testing.T) {
	f := gatewaytest.New()
	seedParents(f, "b1")
	th, err := NewThread(f, schema.KindBuild, "b1")
	require.NoError(t, err)

	th.SetDraft("  nice build  ")
	f.FailNext(gatewaytest.OpInsert, errNetwork)
	_, err = th.Submit(context.Background(), "me")
	assert.ErrorIs(t, err, response.ErrOperationFailed)
	assert.Equal(t, "  nice build  ", th.Draft())

	c, err := th.Submit(context.Background(), "me")
	require.NoError(t, err)
	assert.Equal(t, "nice build", c.Body)
	assert.Equal(t, "me", c.AuthorID)
	assert.Empty(t, th.Draft())
	assert.Equal(t, []string{c.ID}, ids(th.Items()))
}

func TestThreadRemoveIsOwnerScoped(t *testing.T) {
	f := gatewaytest.New()
	f.Seed("comments", gateway.Row{"id": "c1", "post_id": "p1", "user_id": "author", "content": "mine"})
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)
	ctx := context.Background()

	queries := f.CallCount(gatewaytest.OpQuery)
	n, err := th.Remove(ctx, "c1", "intruder")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, queries+1, f.CallCount(gatewaytest.OpQuery))
	assert.Len(t, th.Items(), 1)

	n, err = th.Remove(ctx, "c1", "author")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, th.Items())

	_, err = th.Remove(ctx, "c1", "")
	assert.ErrorIs(t, err, response.ErrAuthRequired)
}

func TestListLoadErrorEmptiesCollection(t *testing.T) {
	f := gatewaytest.New()
	f.Seed("comments", gateway.Row{"post_id": "p1", "user_id": "a", "content": "x"})
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)

	rec := &countRecorder{}
	th.OnCount(rec.record)
	require.Len(t, th.Load(context.Background()), 1)

	f.FailNext(gatewaytest.OpQuery, errNetwork)
	assert.Empty(t, th.Load(context.Background()))
	assert.Empty(t, th.Items())
	assert.Equal(t, []int{1, 0}, rec.all())
}

func TestListUnmountStopsReloads(t *testing.T) {
	f := gatewaytest.New()
	th, err := NewThread(f, schema.KindPost, "p1")
	require.NoError(t, err)
	require.NoError(t, th.Mount(context.Background()))
	require.Equal(t, 1, f.ActiveSubscriptions())

	th.Unmount()
	assert.Equal(t, 0, f.ActiveSubscriptions())

	queries := f.CallCount(gatewaytest.OpQuery)
	assert.Nil(t, th.Load(context.Background()))
	assert.Equal(t, queries, f.CallCount(gatewaytest.OpQuery))
}

func TestFeedOrderAndScope(t *testing.T) {
	f := gatewaytest.New()
	f.Seed("builds",
		gateway.Row{"id": "b1", "user_id": "ada", "title": "old", "description": "d", "tags": `["go"]`},
		gateway.Row{"id": "b2", "user_id": "bob", "title": "mid", "description": "d"},
		gateway.Row{"id": "b3", "user_id": "ada", "title": "new", "description": "fresh"},
	)

	all, err := NewFeed(f, schema.KindBuild, "", 0)
	require.NoError(t, err)
	items := all.Load(context.Background())
	require.Len(t, items, 3)
	assert.Equal(t, "b3", items[0].ID)
	assert.Equal(t, "fresh", items[0].Body)
	assert.Equal(t, []string{"go"}, items[2].Tags)

	mine, err := NewFeed(f, schema.KindBuild, "ada", 1)
	require.NoError(t, err)
	items = mine.Load(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "b3", items[0].ID)

	_, err = NewFeed(f, schema.ParentKind(10), "", 0)
	assert.ErrorIs(t, err, response.ErrValidation)
}
