package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"chat-pulse/auth"
	"chat-pulse/domain"
	apperrors "chat-pulse/errors"
	"chat-pulse/stats"
)

var testSecret = []byte("test-secret")

type fakeVolumeService struct {
	report domain.VolumeReport
	err    error
}

func (f fakeVolumeService) ComputeVolumeReport(_ context.Context, _ time.Time) (domain.VolumeReport, error) {
	return f.report, f.err
}

func newVolumeApp(t *testing.T, service stats.IVolumeService) *fiber.App {
	t.Helper()
	app := NewApp(slog.Default())
	protected := app.Group("", RequireAuth(testSecret))
	InitRestVolume(protected, service)
	return app
}

func statsRequest(t *testing.T, withToken, withAntiForgery bool) *http.Request {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/message/get_message_volume_stats/", nil)
	if withToken {
		token, err := auth.GenerateToken(testSecret, "alice", time.Minute)
		require.NoError(t, err)
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if withAntiForgery {
		request.Header.Set(antiForgeryHeader, "dashboard-token")
	}
	return request
}

func Test_Get_Message_Volume_Stats_Returns_Ordered_Buckets(t *testing.T) {
	req := require.New(t)
	windowStart := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	report := domain.NewVolumeReport(windowStart)
	report.Record(windowStart.Add(10 * time.Minute))
	report.Record(windowStart.Add(23 * time.Hour))
	report.Record(windowStart.Add(23 * time.Hour))
	app := newVolumeApp(t, fakeVolumeService{report: report})

	response, err := app.Test(statsRequest(t, true, true), -1)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	req.NoError(err)

	// The data object keys must come back in chronological order.
	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	var labels []string
	var counts []int64
	depth := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		req.NoError(err)
		switch v := token.(type) {
		case json.Delim:
			if v == '{' {
				depth++
			}
		case string:
			if depth == 2 && v != "data" {
				labels = append(labels, v)
			}
		case json.Number:
			count, err := v.Int64()
			req.NoError(err)
			counts = append(counts, count)
		}
	}
	req.Equal(report.Labels(), labels)
	req.Len(counts, domain.VolumeWindowHours)
	req.Equal(int64(1), counts[0])
	req.Equal(int64(2), counts[23])
}

func Test_Get_Message_Volume_Stats_Store_Unavailable(t *testing.T) {
	req := require.New(t)
	app := newVolumeApp(t, fakeVolumeService{err: apperrors.ErrStoreUnavailable})

	response, err := app.Test(statsRequest(t, true, true), -1)
	req.NoError(err)
	req.Equal(http.StatusServiceUnavailable, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	req.NoError(err)
	var envelope map[string]string
	req.NoError(json.Unmarshal(body, &envelope))
	req.NotEmpty(envelope["error"])
	req.NotContains(envelope["error"], "badger")
}

func Test_Get_Message_Volume_Stats_Requires_Token(t *testing.T) {
	req := require.New(t)
	app := newVolumeApp(t, fakeVolumeService{})

	response, err := app.Test(statsRequest(t, false, true), -1)
	req.NoError(err)
	req.Equal(http.StatusUnauthorized, response.StatusCode)
}

func Test_Get_Message_Volume_Stats_Requires_Anti_Forgery_Header(t *testing.T) {
	req := require.New(t)
	app := newVolumeApp(t, fakeVolumeService{})

	response, err := app.Test(statsRequest(t, true, false), -1)
	req.NoError(err)
	req.Equal(http.StatusForbidden, response.StatusCode)
}
