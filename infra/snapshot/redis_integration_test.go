//go:build integration

package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/minesched/test/util"
)

func TestRedisStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	addr, cleanup, err := util.StartRedis(ctx)
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	defer cleanup()

	st := NewRedisStore(NewRedisClient(addr, "", 0), "it", time.Hour)
	defer func() { _ = st.Close() }()
	exerciseStore(t, st)
}
