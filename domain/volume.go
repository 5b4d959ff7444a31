package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/samber/lo"
)

const (
	// VolumeWindowHours is the span of a volume report, one bucket per hour.
	VolumeWindowHours = 24

	// HourLabelFormat renders a bucket start as its chart category label.
	// Buckets slide with the request time, so minutes are part of the label.
	HourLabelFormat = "15:04"
)

// HourBucket counts the messages received during one hour of the window.
type HourBucket struct {
	Label string
	Start time.Time
	Count int
}

// VolumeReport is an ordered series of exactly VolumeWindowHours buckets,
// oldest first, the last one containing the reference time. Buckets without
// messages stay present with a zero count.
type VolumeReport []HourBucket

// NewVolumeReport builds a zero-filled report whose first bucket opens at
// windowStart. Counts are recorded afterwards; the shape never changes.
func NewVolumeReport(windowStart time.Time) VolumeReport {
	report := make(VolumeReport, VolumeWindowHours)
	for i := range report {
		start := windowStart.Add(time.Duration(i) * time.Hour)
		report[i] = HourBucket{
			Label: start.Format(HourLabelFormat),
			Start: start,
		}
	}
	return report
}

// Record counts one occurrence into the bucket containing at.
// Occurrences outside the window are ignored: bucket intervals are
// half-open, start inclusive and end exclusive.
func (r VolumeReport) Record(at time.Time) {
	if len(r) == 0 {
		return
	}
	windowStart := r[0].Start
	if at.Before(windowStart) {
		return
	}
	idx := int(at.Sub(windowStart) / time.Hour)
	if idx >= len(r) {
		return
	}
	r[idx].Count++
}

func (r VolumeReport) Total() int {
	return lo.SumBy(r, func(b HourBucket) int { return b.Count })
}

func (r VolumeReport) Labels() []string {
	return lo.Map(r, func(b HourBucket, _ int) string { return b.Label })
}

func (r VolumeReport) Counts() []int {
	return lo.Map(r, func(b HourBucket, _ int) int { return b.Count })
}

// MarshalJSON renders the report as a single JSON object mapping labels to
// counts, keeping the buckets' chronological order. The dashboard uses the
// key order directly as the chart's category axis, so a map type would not
// do here.
func (r VolumeReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(bucket.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(bucket.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
