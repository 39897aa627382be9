package dao

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Forge/models"
)

func TestImageListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewImage(newTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, owner := range []string{"u1", "u2", "u1", "u1"} {
		require.NoError(t, repo.CreateImage(ctx, &models.Image{
			ID:          int64(i + 1),
			UserID:      owner,
			Bucket:      "forge",
			ObjectKey:   "images/" + owner + "/" + strconv.Itoa(i) + ".png",
			ContentType: "image/png",
			Size:        10,
			URL:         "https://cdn.test/x",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	items, err := repo.ListByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(4), items[0].ID)
	assert.Equal(t, int64(3), items[1].ID)

	items, err = repo.ListByUser(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
