package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7", acceptLanguage("tr-TR"))
	assert.Equal(t, "en-US,en;q=0.9", acceptLanguage("en-US"))
}

func TestAwait_ReturnsFnError(t *testing.T) {
	want := errors.New("boom")
	err := await(context.Background(), func() error { return want })
	assert.ErrorIs(t, err, want)
}

func TestAwait_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	err := await(ctx, func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s := &PlaywrightSession{}
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestLauncher_NotRunning(t *testing.T) {
	l := &PlaywrightLauncher{}
	_, err := l.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}
