package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker samples the server's own process on an interval and logs
// RSS, CPU and status, giving operators a heartbeat without any external
// monitoring stack.
type HealthWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Warn("failed to sample process stats", "error", err)
				continue
			}
			w.log.Info("process health",
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
				"status", status)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, string, error) {
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return mem.RSS, cpu, status, nil
}
