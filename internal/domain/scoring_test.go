package domain

import "testing"

func TestTimeDecayScoring(t *testing.T) {
	const limit = 10 // seconds

	if got := TimeDecayScoring(0, limit); got != 100 {
		t.Fatalf("instant answer: expected 100, got %d", got)
	}
	if got := TimeDecayScoring(5_000, limit); got < 45 || got > 55 {
		t.Fatalf("half the limit: expected roughly 50, got %d", got)
	}
	if got := TimeDecayScoring(9_999, limit); got != 1 {
		t.Fatalf("just before the deadline: expected floor 1, got %d", got)
	}
	if got := TimeDecayScoring(25_000, limit); got != 1 {
		t.Fatalf("past the deadline: expected floor 1, got %d", got)
	}
}

func TestTimeDecayScoringMonotone(t *testing.T) {
	const limit = 30
	previous := 101
	for elapsed := int64(0); elapsed <= 30_000; elapsed += 500 {
		score := TimeDecayScoring(elapsed, limit)
		if score < 1 || score > 100 {
			t.Fatalf("score out of [1,100] at %dms: %d", elapsed, score)
		}
		if score > previous {
			t.Fatalf("score increased from %d to %d at %dms", previous, score, elapsed)
		}
		previous = score
	}
}

func TestTimeDecayScoringDegenerateLimit(t *testing.T) {
	if got := TimeDecayScoring(0, 0); got != 1 {
		t.Fatalf("zero limit: expected floor 1, got %d", got)
	}
	if got := TimeDecayScoring(-50, 10); got != 100 {
		t.Fatalf("negative elapsed clamps to 0: expected 100, got %d", got)
	}
}
