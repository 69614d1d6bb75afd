package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-system/models"
)

func TestEvaluateSingleStepOnly(t *testing.T) {
	engine := NewPromotionEngine(models.RankThresholds)

	// Points far past every threshold still climb one tier per call.
	require.Equal(t, 1, engine.Evaluate(5000, 0))
	require.Equal(t, 2, engine.Evaluate(5000, 1))
	require.Equal(t, 3, engine.Evaluate(5000, 2))
	require.Equal(t, 4, engine.Evaluate(5000, 3))
	require.Equal(t, 5, engine.Evaluate(5000, 4))
	require.Equal(t, 5, engine.Evaluate(5000, 5))
}

func TestEvaluateIdempotentWhenPointsUnchanged(t *testing.T) {
	engine := NewPromotionEngine(models.RankThresholds)

	rank := engine.Evaluate(150, 0)
	require.Equal(t, 1, rank)
	// Same points again: 300 is needed for rank 2, so nothing moves.
	require.Equal(t, 1, engine.Evaluate(150, rank))
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	engine := NewPromotionEngine(models.RankThresholds)

	require.Equal(t, 0, engine.Evaluate(99, 0))
	require.Equal(t, 1, engine.Evaluate(100, 0))
	require.Equal(t, 1, engine.Evaluate(100, 1))
	require.Equal(t, 1, engine.Evaluate(299, 1))
	require.Equal(t, 2, engine.Evaluate(300, 1))
}

func TestEvaluateTopOfLadderIsFixedPoint(t *testing.T) {
	engine := NewPromotionEngine(models.RankThresholds)

	require.Equal(t, 5, engine.TopRank())
	require.Equal(t, 5, engine.Evaluate(1_000_000, 5))
}

func TestEvaluateNeverDemotes(t *testing.T) {
	engine := NewPromotionEngine(models.RankThresholds)

	// Rank stays put even when points sit below the current tier's
	// threshold; rank is monotonically non-decreasing.
	require.Equal(t, 3, engine.Evaluate(0, 3))
}
