package cfr_test

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfr-holdem-solver/internal/cfr"
)

func TestTrainerNowUsesInjectedClock(t *testing.T) {
	t.Parallel()
	trainer, err := cfr.NewTrainer(smallAbstraction(), tinyPostflopConfig(3))
	require.NoError(t, err)

	mock := quartz.NewMock(t)
	trainer.SetClock(mock)

	before := trainer.Now()
	mock.Advance(time.Hour).MustWait(context.Background())
	after := trainer.Now()

	assert.Equal(t, time.Hour, after.Sub(before))
}
