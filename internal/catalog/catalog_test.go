package catalog

import (
	"context"
	"testing"

	"alcyxob/liftlog/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	exercises, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, exercises)
	for _, e := range exercises {
		assert.NotEmpty(t, e.Name)
		assert.NotEmpty(t, e.TargetMuscle, e.Name)
		assert.False(t, e.IsCustom)
		assert.Nil(t, e.UserID)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("exercises: [{target_muscle: Legs}]"))
	assert.ErrorContains(t, err, "no name")

	_, err = Parse([]byte("exercises: [{name: Squat}, {name: squat}]"))
	assert.ErrorContains(t, err, "twice")

	_, err = Parse([]byte("exercises: {"))
	assert.Error(t, err)
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, Seed(ctx, store.Exercises))
	first, err := store.Exercises.ListVisible(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, store.Exercises))
	second, err := store.Exercises.ListVisible(ctx, "u1")
	require.NoError(t, err)

	exercises, _ := Default()
	assert.Len(t, first, len(exercises))
	assert.Len(t, second, len(first))
}
