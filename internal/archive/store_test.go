// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-reviewer/internal/pipeline"
	"github.com/pdiddy/paper-reviewer/internal/review"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

func testSetup(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func stage(name string, out any, err error) pipeline.Stage {
	return pipeline.Func{StageName: name, Fn: func(context.Context, *types.PaperText, *pipeline.ReviewState) (any, []string, error) {
		return out, []string{"note"}, err
	}}
}

func finishedRun(title string, rec types.Recommendation) *pipeline.ReviewState {
	stages := []pipeline.Stage{
		stage(review.StageMetadata, &types.Metadata{Title: title}, nil),
		stage(review.StageVerdict, &types.Verdict{Recommendation: rec, Justification: "ok"}, nil),
	}
	return pipeline.Run(context.Background(), &types.PaperText{RawText: "x"}, stages, pipeline.Policy{})
}

func TestSaveAndGet(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	state := finishedRun("Sparse Attention", types.RecommendHighly)

	saved, err := store.Save(ctx, state, "2401.00001")
	require.NoError(t, err)
	assert.Equal(t, "Sparse Attention", saved.Title)
	assert.Equal(t, "Highly Recommended", saved.Recommendation)
	assert.Equal(t, 2, saved.Warnings)

	got, snap, err := store.Get(ctx, state.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, saved.RunID, got.RunID)
	assert.Equal(t, "2401.00001", got.Source)
	assert.Equal(t, "Highly Recommended", got.Recommendation)
	assert.False(t, got.Halted)
	assert.WithinDuration(t, state.StartedAt, got.StartedAt, time.Millisecond)

	assert.Equal(t, state.RunID.String(), snap.RunID)
	require.Len(t, snap.Stages, 2)
	assert.Equal(t, review.StageVerdict, snap.Stages[1].Stage)
	assert.Equal(t, []string{"metadata: note", "verdict: note"}, snap.Warnings)
}

func TestSave_HaltedRun(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	stages := []pipeline.Stage{
		stage(review.StageMetadata, &types.Metadata{Title: "Broken"}, nil),
		stage(review.StageMethodology, nil, errors.New("model down")),
	}
	state := pipeline.Run(ctx, &types.PaperText{RawText: "x"}, stages, pipeline.Policy{})

	saved, err := store.Save(ctx, state, "broken.pdf")
	require.NoError(t, err)
	assert.True(t, saved.Halted)
	assert.Equal(t, 1, saved.Errors)
	assert.Empty(t, saved.Recommendation)

	_, snap, err := store.Get(ctx, saved.RunID)
	require.NoError(t, err)
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, review.StageMethodology, snap.Errors[0].Stage)
}

func TestSave_ReplacesSameRun(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	state := finishedRun("Once", types.RecommendIgnore)

	_, err := store.Save(ctx, state, "a.pdf")
	require.NoError(t, err)
	_, err = store.Save(ctx, state, "b.pdf")
	require.NoError(t, err)

	entries, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.pdf", entries[0].Source)
}

func TestList(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	titles := []string{"Graph Networks", "Sparse Attention", "Attention Sinks"}
	for _, title := range titles {
		_, err := store.Save(ctx, finishedRun(title, types.RecommendWorth), title+".pdf")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Attention Sinks", all[0].Title, "newest first")
	assert.Equal(t, "Graph Networks", all[2].Title)

	limited, err := store.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	matched, err := store.List(ctx, ListOptions{Query: "attention"})
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestGet_NotFound(t *testing.T) {
	store := testSetup(t)
	_, _, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.db")
	store, err := Open(path)
	require.NoError(t, err)
	state := finishedRun("Persisted", types.RecommendWorth)
	_, err = store.Save(context.Background(), state, "p.pdf")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	got, _, err := store.Get(context.Background(), state.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
}
