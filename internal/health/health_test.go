package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/forum/internal/testutil"
)

func TestCheck(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	got := New(db, rdb).Check(context.Background())
	assert.NoError(t, got["database"])
	assert.NoError(t, got["redis"])

	mr.Close()
	got = New(db, rdb).Check(context.Background())
	assert.Error(t, got["redis"])

	got = New(db, nil).Check(context.Background())
	assert.NotContains(t, got, "redis")
}
