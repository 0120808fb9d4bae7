package workers

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
)

func TestMailboxMonitor_Check(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a queue at 9 of 10 and one at 1 of 10
	busy := make(chan int, 10)
	for i := 0; i < 9; i++ {
		busy <- i
	}
	idle := make(chan int, 10)
	idle <- 1

	w := NewMailboxMonitorWorker(log, time.Hour, 0.8,
		Gauge{Name: "busy", Usage: func() (int, int) { return len(busy), cap(busy) }},
		Gauge{Name: "idle", Usage: func() (int, int) { return len(idle), cap(idle) }},
		Gauge{Name: "unbuffered", Usage: func() (int, int) { return 0, 0 }},
	)

	// Then only the busy one is reported
	req.Equal(1, w.check())
}

func TestMailboxMonitor_Stops_On_Cancel(t *testing.T) {
	req := require.New(t)
	w := NewMailboxMonitorWorker(logs.GetLoggerFromLevel(slog.LevelDebug), time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("monitor did not stop")
	}
}

func TestMailboxMonitor_SampleSelf(t *testing.T) {
	req := require.New(t)

	// Given the current test process
	p, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)

	// When its footprint is sampled
	stats, err := sampleSelf(p)

	// Then a resident memory size is reported
	req.NoError(err)
	req.Greater(stats.RSS, uint64(0))
	req.GreaterOrEqual(stats.CPUPercent, float64(0))
}
