package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/minesched/core/factory"
	"github.com/kilianp07/minesched/core/model"
	"github.com/kilianp07/minesched/core/schedule"
)

func grid() *schedule.Grid {
	return &schedule.Grid{
		Grid:       map[string]schedule.Row{"S1": {"A", "A", ""}, "S2": {"", "", ""}},
		GridHours:  3,
		SiteOrder:  []string{"S1", "S2"},
		SiteActive: map[string]bool{"S1": true, "S2": false},
		AllDelays:  []model.Delay{{Site: "S1", Hour: 2, Code: "BREAK"}},
	}
}

func TestNewCounters(t *testing.T) {
	now := time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)
	s := New(KindManual, "  ", grid(), nil, now)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Schedule 2024-05-01 07:30", s.Name)
	assert.Equal(t, Counters{TotalSites: 2, ActiveSites: 1, TotalTasks: 2, TotalDelays: 1}, s.Counters)
	assert.Equal(t, Counters{}, CountersOf(nil))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewStore(factory.ModuleConfig{})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 4; i++ {
		kind := KindGeneration
		if i == 2 {
			kind = KindManual
		}
		s := New(kind, "", grid(), nil, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, s.ID)
		require.NoError(t, st.Save(ctx, s))
	}

	list, err := st.List(ctx, Query{Kind: KindGeneration})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[3], list[0].ID)
	assert.Nil(t, list[0].Grid, "listings omit grids")

	page, err := st.List(ctx, Query{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)

	latest, err := Latest(ctx, st, KindGeneration)
	require.NoError(t, err)
	assert.Equal(t, ids[3], latest.ID)
	require.NotNil(t, latest.Grid)
	assert.Equal(t, "A", latest.Grid.Cell("S1", 0))

	require.NoError(t, st.Delete(ctx, ids[3]))
	_, err = st.Get(ctx, ids[3])
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(st.Delete(ctx, ids[3]), ErrNotFound))

	_, err = Latest(ctx, NewMemoryStore(0), KindManual)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreEviction(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(2)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, st.Save(ctx, New(KindGeneration, "", nil, nil, base.Add(time.Duration(i)*time.Minute))))
	}
	list, err := st.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, base.Add(4*time.Minute), list[0].CreatedAt)
}

func TestQueryPage(t *testing.T) {
	in := []Snapshot{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, Query{Offset: 5}.Page(in), 0)
	assert.Equal(t, "c", Query{Offset: 2}.Page(in)[0].ID)
	assert.Len(t, Query{Limit: 10}.Page(in), 3)
}
