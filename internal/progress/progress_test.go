package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/tuiread/internal/model"
)

func newTracker(t *testing.T) (*Tracker, *KVGateway, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	gw := NewKVGateway(kv, zap.NewNop())
	return NewTracker(context.Background(), gw, zap.NewNop()), gw, kv
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		marks []model.SentenceMark
		want  model.Path
	}{
		{
			name: "first stuck within cutoff",
			marks: []model.SentenceMark{
				{SentenceID: 3, Kind: model.Stuck},
				{SentenceID: 9, Kind: model.Stuck},
			},
			want: model.PathA,
		},
		{
			name:  "stuck late without understood",
			marks: []model.SentenceMark{{SentenceID: 9, Kind: model.Stuck}},
			want:  model.PathB,
		},
		{
			name: "stuck late with understood",
			marks: []model.SentenceMark{
				{SentenceID: 9, Kind: model.Stuck},
				{SentenceID: 2, Kind: model.Understood},
			},
			want: model.PathC,
		},
		{
			name: "insertion order wins over sentence id",
			marks: []model.SentenceMark{
				{SentenceID: 9, Kind: model.Stuck},
				{SentenceID: 3, Kind: model.Stuck},
			},
			want: model.PathB,
		},
		{
			name:  "no stuck marks",
			marks: []model.SentenceMark{{SentenceID: 1, Kind: model.NotUnderstood}},
			want:  model.PathC,
		},
		{name: "empty", want: model.PathC},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.marks))
		})
	}
}

func TestUpdateMarkUpserts(t *testing.T) {
	ctx := context.Background()
	tr, gw, _ := newTracker(t)

	require.NoError(t, tr.UpdateMark(ctx, 4, model.Stuck))
	require.NoError(t, tr.UpdateMark(ctx, 4, model.Stuck))
	require.NoError(t, tr.UpdateMark(ctx, 2, model.Understood))

	marks := tr.Marks()
	require.Len(t, marks, 2)
	assert.Equal(t, model.SentenceMark{SentenceID: 4, Kind: model.Stuck}, marks[0])

	require.NoError(t, tr.UpdateMark(ctx, 4, model.NotUnderstood))
	marks = tr.Marks()
	require.Len(t, marks, 2)
	assert.Equal(t, 4, marks[0].SentenceID, "update keeps the recording position")
	assert.Equal(t, model.NotUnderstood, marks[0].Kind)

	stored, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, tr.Marks(), stored.Marks, "every mutation is written through")

	_, ok := tr.Mark(11)
	assert.False(t, ok)
	assert.Equal(t, 1, tr.CountKind(model.NotUnderstood))
}

func TestGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := NewKVGateway(NewMemoryKV(), nil)
	p := model.UserProgress{
		CurrentStep:     4,
		CurrentSentence: 3,
		Marks: []model.SentenceMark{
			{SentenceID: 9, Kind: model.Stuck},
			{SentenceID: 2, Kind: model.Understood},
			{SentenceID: 5, Kind: model.NotUnderstood},
			{SentenceID: 6, Kind: model.Unmarked},
		},
		UserPath:       model.PathB,
		CompletedSteps: []int{1, 2, 3, 3},
		RunID:          "run-1",
	}
	require.NoError(t, gw.Save(ctx, p))
	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestGatewayCorruptRecordFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, StorageKey, "{not json"))
	gw := NewKVGateway(kv, zap.New(core))

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProgress(), got)
	assert.Equal(t, 1, logs.Len())
}

func TestGatewayForeignPathIsCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Put(ctx, StorageKey, `{"currentStep":3,"userPath":"Z"}`))
	got, err := NewKVGateway(kv, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProgress(), got)
}

func TestResetRevertsToDefaults(t *testing.T) {
	ctx := context.Background()
	tr, gw, _ := newTracker(t)
	require.NoError(t, tr.UpdateMark(ctx, 9, model.Stuck))
	require.NoError(t, tr.CompleteMarking(ctx, model.PathB))

	require.NoError(t, tr.Reset(ctx))
	assert.Equal(t, model.DefaultProgress(), tr.Progress())
	assert.Equal(t, model.PathNone, tr.Path())

	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProgress(), loaded)
}

func TestStepTransitions(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := newTracker(t)

	require.NoError(t, tr.CompleteStep(ctx, 2))
	require.NoError(t, tr.CompleteMarking(ctx, model.PathC))
	p := tr.Progress()
	assert.Equal(t, 3, p.CurrentStep)
	assert.Equal(t, model.PathC, p.UserPath)
	assert.Equal(t, []int{1, 2}, p.CompletedSteps)
	assert.NotEmpty(t, p.RunID)

	runID := p.RunID
	require.NoError(t, tr.JumpTo(ctx, 2))
	require.NoError(t, tr.CompleteStep(ctx, 3))
	p = tr.Progress()
	assert.Equal(t, []int{1, 2}, p.CompletedSteps)
	assert.Equal(t, runID, p.RunID)

	require.NoError(t, tr.JumpTo(ctx, 6))
	p = tr.Progress()
	assert.Equal(t, 6, p.CurrentStep)
	assert.Equal(t, 0, p.CurrentSentence)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, p.CompletedSteps)
}

func TestCompletedStepsIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := newTracker(t)
	require.NoError(t, tr.Replace(ctx, model.UserProgress{CurrentStep: 3, CompletedSteps: []int{1, 2, 3}}))
	require.NoError(t, tr.CompleteStep(ctx, 4))
	assert.Equal(t, []int{1, 2, 3, 3}, tr.Progress().CompletedSteps)
}

func TestJumpToRejectsOutOfRangeSteps(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := newTracker(t)
	require.NoError(t, tr.JumpTo(ctx, 4))
	assert.Error(t, tr.JumpTo(ctx, -1))
	assert.Error(t, tr.JumpTo(ctx, 0))
	assert.Error(t, tr.JumpTo(ctx, model.FinalStep+1))
	p := tr.Progress()
	assert.Equal(t, 4, p.CurrentStep)
	assert.Equal(t, []int{1, 2, 3}, p.CompletedSteps)
}
