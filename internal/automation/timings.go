package automation

import (
	"context"
	"time"
)

// Timings - таймауты этапов, не зависящие от запроса. Решающие ожидания
// челленджа и финализации берут таймаут из запроса.
type Timings struct {
	NavFirstAttempt  time.Duration
	NavNextAttempts  time.Duration
	NavMaxAttempts   int
	CandidateTimeout time.Duration
	TypeDelay        time.Duration
	SubmitPause      time.Duration
	AutoFinalize     time.Duration
	SnapshotLimit    int
	BodyPreviewLimit int
}

func DefaultTimings() Timings {
	return Timings{
		NavFirstAttempt:  15 * time.Second,
		NavNextAttempts:  25 * time.Second,
		NavMaxAttempts:   3,
		CandidateTimeout: 2500 * time.Millisecond,
		TypeDelay:        80 * time.Millisecond,
		SubmitPause:      800 * time.Millisecond,
		AutoFinalize:     8 * time.Second,
		SnapshotLimit:    2000,
		BodyPreviewLimit: 500,
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// sleep - пауза, которую прерывает отмена ctx.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
