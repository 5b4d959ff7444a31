//go:generate go run go.uber.org/mock/mockgen -source=volume.go -destination=../mocks/mock_volume.go -package=mocks

// Package stats computes message-volume reports for the dashboard.
// It is a pure read over the message store: no state is kept between
// calls and concurrent invocations need no locking.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-pulse/domain"
	"chat-pulse/errors"
)

// VolumeSource is the slice of the message store the aggregator needs:
// the timestamps of messages received inside a bounded window.
type VolumeSource interface {
	OccurrencesBetween(from, to time.Time) ([]time.Time, error)
}

type IVolumeService interface {
	ComputeVolumeReport(ctx context.Context, now time.Time) (domain.VolumeReport, error)
}

type VolumeService struct {
	source VolumeSource
	log    *slog.Logger
}

func NewVolumeService(source VolumeSource, log *slog.Logger) *VolumeService {
	return &VolumeService{source: source, log: log}
}

// ComputeVolumeReport counts messages per hour over the trailing 24-hour
// window [now-24h, now). Bucket boundaries slide with now rather than
// aligning to wall-clock hours, matching the dashboard's "last 24 hours"
// reading. The whole window is fetched in a single range scan and bucketed
// here; two calls with the same now and an unchanged store yield identical
// reports.
//
// A store failure surfaces as ErrStoreUnavailable: the caller must see the
// failure, never a partial or stale report.
func (s *VolumeService) ComputeVolumeReport(ctx context.Context, now time.Time) (domain.VolumeReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now = now.UTC()
	windowStart := now.Add(-domain.VolumeWindowHours * time.Hour)

	occurrences, err := s.source.OccurrencesBetween(windowStart, now)
	if err != nil {
		s.log.Error("volume window scan failed", "from", windowStart, "to", now, "error", err)
		return nil, fmt.Errorf("%w: window scan failed", errors.ErrStoreUnavailable)
	}

	report := domain.NewVolumeReport(windowStart)
	for _, at := range occurrences {
		report.Record(at)
	}
	return report, nil
}
