package domain

// ScoringPolicy decides how many points a correct answer earns, given the
// elapsed milliseconds since the question opened and the question's time limit
// in seconds. Incorrect answers never reach the policy.
type ScoringPolicy func(elapsedMs int64, timeLimitSeconds int) int

const maxQuestionScore = 100

// TimeDecayScoring awards the full score for an instantaneous answer and
// decays linearly to a floor of 1 point as the deadline approaches. Answers
// that somehow arrive past the limit still earn the floor; the acceptance gate
// is the game's job, not the policy's.
func TimeDecayScoring(elapsedMs int64, timeLimitSeconds int) int {
	limitMs := int64(timeLimitSeconds) * 1000
	if limitMs <= 0 {
		return 1
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	score := maxQuestionScore - int((int64(maxQuestionScore)*elapsedMs)/limitMs)
	if score < 1 {
		return 1
	}
	if score > maxQuestionScore {
		return maxQuestionScore
	}
	return score
}
