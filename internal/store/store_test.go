package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "tuiread.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.NoError(t, s.Put(ctx, "k", "v2"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProgressGatewayOverStore(t *testing.T) {
	ctx := context.Background()
	gw := progress.NewKVGateway(openTestStore(t), nil)
	p := model.UserProgress{
		CurrentStep:     3,
		Marks:           []model.SentenceMark{{SentenceID: 9, Kind: model.Stuck}},
		UserPath:        model.PathB,
		CompletedSteps:  []int{1, 2},
		CurrentSentence: 0,
	}
	require.NoError(t, gw.Save(ctx, p))
	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.NoError(t, gw.Clear(ctx))
	got, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProgress(), got)
}

func TestStepEvents(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		_, err := s.InsertStepEvent(ctx, model.StepRecord{
			RunID:     "run",
			Step:      i,
			Path:      model.PathA,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			EndedAt:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Cycles:    i * 2,
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.RecordStep(ctx, model.StepRecord{
		RunID:     "other",
		Step:      1,
		StartedAt: base.Add(time.Hour),
		EndedAt:   base.Add(time.Hour + time.Minute),
		Failures:  1,
	}))

	all, err := s.ListStepEvents(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 1, all[0].Step)
	assert.Equal(t, 30*time.Second, all[0].Duration())
	assert.Equal(t, model.PathNone, all[3].Path)
	assert.Equal(t, 1, all[3].Failures)

	last, err := s.ListStepEvents(ctx, model.HistoryConfig{Last: 2})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, 3, last[0].Step)
	assert.Equal(t, "other", last[1].RunID)

	runs, err := s.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
}
