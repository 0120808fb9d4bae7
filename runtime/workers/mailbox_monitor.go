package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Gauge samples a bounded queue. Reading len and cap of a channel never blocks.
type Gauge struct {
	Name  string
	Usage func() (length, capacity int)
}

// SelfStats is the hub process footprint sampled next to the mailboxes.
type SelfStats struct {
	RSS        uint64
	CPUPercent float64
}

// MailboxMonitorWorker periodically logs how full the watched queues are,
// along with the memory and CPU of the hub process itself.
// A queue above threshold (ratio of its capacity) is reported as a warning.
type MailboxMonitorWorker struct {
	log       *slog.Logger
	gauges    []Gauge
	interval  time.Duration
	threshold float64
}

func NewMailboxMonitorWorker(log *slog.Logger, interval time.Duration, threshold float64, gauges ...Gauge) *MailboxMonitorWorker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	return &MailboxMonitorWorker{log: log, gauges: gauges, interval: interval, threshold: threshold}
}

func (w *MailboxMonitorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping mailbox monitoring")
			return nil
		case <-ticker.C:
			saturated := w.check()
			stats, err := sampleSelf(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Debug("Hub self stats",
				"rss_bytes", stats.RSS,
				"cpu_percent", stats.CPUPercent,
				"saturated_mailboxes", saturated)
		}
	}
}

// sampleSelf reads the resident memory and CPU usage of the given process.
func sampleSelf(p *process.Process) (SelfStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return SelfStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return SelfStats{}, err
	}
	return SelfStats{RSS: memInfo.RSS, CPUPercent: cpuPercent}, nil
}

// check samples every gauge once and returns how many are above threshold.
func (w *MailboxMonitorWorker) check() int {
	saturated := 0
	for _, g := range w.gauges {
		length, capacity := g.Usage()
		if capacity > 0 && float64(length)/float64(capacity) >= w.threshold {
			saturated++
			w.log.Warn("Mailbox nearly full", "name", g.Name, "length", length, "capacity", capacity)
			continue
		}
		w.log.Debug("Mailbox usage", "name", g.Name, "length", length, "capacity", capacity)
	}
	return saturated
}
