package chrono

import (
	"mlbids/internal/components/telemetry"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardCron(t *testing.T) {
	cronner := NewStandardCron(telemetry.SlogAPI{}, time.UTC)
	defer cronner.Stop()

	var runs int64
	err := cronner.Cron("@every 1s", func() {
		atomic.AddInt64(&runs, 1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStandardCronInvalidSpec(t *testing.T) {
	cronner := NewStandardCron(telemetry.SlogAPI{}, nil)
	defer cronner.Stop()

	err := cronner.Cron("not a cron spec", func() {})
	require.Error(t, err)
}
