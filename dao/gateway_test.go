package dao

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Forge/config"
	"Forge/gateway"
	"Forge/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	feed := NewChangeFeed(rdb, &config.Config{Gateway: &config.Gateway{}})
	return NewGateway(newTestDB(t), feed)
}

func TestGatewayInsertAndRead(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	row, err := g.Insert(ctx, "likes", gateway.Row{"post_id": "p1", "user_id": "u1", "post_type": "post"})
	require.NoError(t, err)
	assert.NotEmpty(t, row.String("id"))
	assert.False(t, row.Time("created_at").IsZero())

	n, err := g.Count(ctx, "likes", gateway.Eq("post_id", "p1"), gateway.Eq("post_type", "post"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := g.Query(ctx, gateway.Query{Table: "likes", Filters: []gateway.Filter{gateway.Eq("user_id", "u1")}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row.String("id"), rows[0].String("id"))
	assert.Equal(t, "p1", rows[0].String("post_id"))
}

func TestGatewayInsertDuplicateEdge(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	edge := gateway.Row{"post_id": "p1", "user_id": "u1", "engagement_type": "learned"}

	_, err := g.Insert(ctx, "engagement", edge)
	require.NoError(t, err)
	_, err = g.Insert(ctx, "engagement", edge)
	assert.ErrorIs(t, err, gateway.ErrConflict)

	edge["engagement_type"] = "inspired"
	_, err = g.Insert(ctx, "engagement", edge)
	assert.NoError(t, err)
}

func TestGatewayCompoundDelete(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	c, err := g.Insert(ctx, "share_comments", gateway.Row{"share_id": "s1", "user_id": "author", "content": "hi"})
	require.NoError(t, err)

	n, err := g.Delete(ctx, "share_comments", gateway.Eq("id", c.String("id")), gateway.Eq("user_id", "intruder"))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = g.Delete(ctx, "share_comments", gateway.Eq("id", c.String("id")), gateway.Eq("user_id", "author"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := g.Count(ctx, "share_comments", gateway.Eq("share_id", "s1"))
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestGatewayRefusesUnfilteredAndBadIdentifiers(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.Delete(ctx, "likes")
	assert.ErrorIs(t, err, gateway.ErrUnfiltered)
	_, err = g.Update(ctx, "profiles", gateway.Row{"bio": "x"})
	assert.ErrorIs(t, err, gateway.ErrUnfiltered)

	_, err = g.Query(ctx, gateway.Query{Table: "likes; drop table likes"})
	assert.ErrorIs(t, err, gateway.ErrBadIdentifier)
	_, err = g.Count(ctx, "likes", gateway.Eq("post_id = 1 OR 1", "x"))
	assert.ErrorIs(t, err, gateway.ErrBadIdentifier)
}

func TestGatewayQuerySearchOrderLimit(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	for _, p := range []gateway.Row{
		{"user_id": "u1", "title": "Shipping RAG agents", "content": "notes"},
		{"user_id": "u1", "title": "Weekly log", "content": "tried a new rag stack"},
		{"user_id": "u2", "title": "Unrelated", "content": "nothing here"},
		{"user_id": "u2", "title": "100% done", "content": "percent sign"},
	} {
		_, err := g.Insert(ctx, "posts", p)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	rows, err := g.Query(ctx, gateway.Query{
		Table: "posts",
		Any:   []gateway.Filter{gateway.ILike("title", "RAG"), gateway.ILike("content", "RAG")},
		Order: &gateway.Order{Column: "created_at", Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Weekly log", rows[0].String("title"))

	rows, err = g.Query(ctx, gateway.Query{Table: "posts", Any: []gateway.Filter{gateway.ILike("title", "0%")}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100% done", rows[0].String("title"))

	rows, err = g.Query(ctx, gateway.Query{Table: "posts", Filters: []gateway.Filter{gateway.Eq("user_id", "u1")}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGatewayQueryTiebreak(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	for _, id := range []string{"c2", "c3", "c1"} {
		_, err := g.Insert(ctx, "comments", gateway.Row{"id": id, "post_id": "p1", "user_id": "u", "content": id})
		require.NoError(t, err)
	}
	same := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n, err := g.Update(ctx, "comments", gateway.Row{"created_at": same}, gateway.Eq("post_id", "p1"))
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	ids := func(desc bool) []string {
		rows, err := g.Query(ctx, gateway.Query{
			Table:   "comments",
			Filters: []gateway.Filter{gateway.Eq("post_id", "p1")},
			Order:   &gateway.Order{Column: "created_at", Desc: desc, Tiebreak: "id"},
		})
		require.NoError(t, err)
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.String("id"))
		}
		return out
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(false))
	assert.Equal(t, []string{"c3", "c2", "c1"}, ids(true))

	_, err = g.Query(ctx, gateway.Query{Table: "comments", Order: &gateway.Order{Column: "created_at", Tiebreak: "id; drop"}})
	assert.ErrorIs(t, err, gateway.ErrBadIdentifier)
}

func TestGatewayUpdate(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	p, err := g.Insert(ctx, "profiles", gateway.Row{"id": "u1", "username": "ada", "updated_at": time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.String("id"))

	n, err := g.Update(ctx, "profiles", gateway.Row{"bio": "builds compilers"}, gateway.Eq("id", "u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := g.Query(ctx, gateway.Query{Table: "profiles", Filters: []gateway.Filter{gateway.Eq("id", "u1")}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "builds compilers", rows[0].String("bio"))
}

func TestGatewaySubscribeDeliversScopedEvents(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	sub, err := g.Subscribe(ctx, "likes", gateway.Eq("post_id", "p1"))
	require.NoError(t, err)
	defer sub.Close()

	_, err = g.Insert(ctx, "likes", gateway.Row{"post_id": "p2", "user_id": "u1", "post_type": "post"})
	require.NoError(t, err)
	_, err = g.Insert(ctx, "likes", gateway.Row{"post_id": "p1", "user_id": "u1", "post_type": "post"})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, gateway.ChangeInsert, ev.Op)
		assert.Equal(t, "likes", ev.Table)
		assert.Equal(t, "p1", ev.Row.String("post_id"))
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
	}

	_, err = g.Delete(ctx, "likes", gateway.Eq("post_id", "p1"), gateway.Eq("user_id", "u1"))
	require.NoError(t, err)
	select {
	case ev := <-sub.Events():
		assert.Equal(t, gateway.ChangeDelete, ev.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("no delete event received")
	}
}

func TestChangeFeedCloseEndsEvents(t *testing.T) {
	g := newTestGateway(t)

	sub, err := g.Subscribe(context.Background(), "comments")
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	_, open := <-sub.Events()
	assert.False(t, open)
	assert.NoError(t, sub.Close())
}
