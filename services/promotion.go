package services

// PromotionEngine derives a user's rank from accumulated points against a
// fixed threshold ladder. thresholds[i] is the points required for rank i+1.
type PromotionEngine struct {
	thresholds []int64
}

func NewPromotionEngine(thresholds []int64) *PromotionEngine {
	return &PromotionEngine{thresholds: thresholds}
}

// Evaluate returns the rank the user holds after this points update. A user
// climbs at most one tier per call, no matter how far the points jumped:
// a huge one-time award still promotes level by level, one evaluation at a
// time. Rank never goes down, and the top of the ladder is a fixed point.
func (e *PromotionEngine) Evaluate(points int64, currentRank int) int {
	next := currentRank + 1
	if next > len(e.thresholds) {
		return currentRank
	}
	if points >= e.thresholds[next-1] {
		return next
	}
	return currentRank
}

// TopRank is the highest configured tier.
func (e *PromotionEngine) TopRank() int { return len(e.thresholds) }
