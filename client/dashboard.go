// Package client implements the dashboard widget's side of the stats
// contract: one fetch per page load, then a single render.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"chat-pulse/domain"
	apperrors "chat-pulse/errors"

	"github.com/google/uuid"
)

const statsPath = "/message/get_message_volume_stats/"

// ChartRenderer is the chart library boundary. It receives the category
// labels and the counts in the exact order the endpoint sent them.
type ChartRenderer interface {
	Render(categories []string, data []int) error
}

type State int

const (
	StateIdle State = iota
	StateRequesting
	StateRendered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRequesting:
		return "Requesting"
	case StateRendered:
		return "Rendered"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// DashboardClient fetches the message-volume stats and hands them to its
// renderer. The API base URL is injected explicitly; nothing is read from
// ambient state.
type DashboardClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	renderer   ChartRenderer
	log        *slog.Logger
	state      State

	// Alert surfaces a failure to the user. Overridable for tests;
	// defaults to a line on stderr.
	Alert func(message string)
}

func NewDashboardClient(baseURL, token string, timeout time.Duration,
	renderer ChartRenderer, log *slog.Logger) *DashboardClient {
	return &DashboardClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		renderer:   renderer,
		log:        log,
		state:      StateIdle,
		Alert: func(message string) {
			fmt.Fprintf(os.Stderr, "⚠ %s\n", message)
		},
	}
}

func (c *DashboardClient) State() State {
	return c.state
}

// Load runs the widget's whole lifecycle once: Idle -> Requesting, then
// Rendered on success or Failed otherwise. Any failure alerts the user,
// logs the diagnostic and leaves the renderer untouched; there is no
// automatic retry and never a partial chart.
func (c *DashboardClient) Load(ctx context.Context) error {
	c.state = StateRequesting

	categories, data, err := c.fetch(ctx)
	if err != nil {
		return c.fail("Could not load message volume stats", err)
	}

	if err := c.renderer.Render(categories, data); err != nil {
		return c.fail("Could not render message volume chart", err)
	}

	c.state = StateRendered
	return nil
}

func (c *DashboardClient) fail(message string, err error) error {
	c.state = StateFailed
	c.Alert(message)
	c.log.Error("dashboard widget failed", "error", err)
	return err
}

func (c *DashboardClient) fetch(ctx context.Context) ([]string, []int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+statsPath, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Csrf-Token", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers network errors and the bounded-wait expiry alike.
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrRequestFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: %s: %s", apperrors.ErrRequestFailed, resp.Status, errorReason(body))
	}

	return decodeOrderedCounts(body)
}

func errorReason(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		return "no reason given"
	}
	return envelope.Error
}

// decodeOrderedCounts extracts the label->count pairs from the response
// envelope without losing their order. encoding/json maps are unordered,
// so the data object is walked token by token instead: the key sequence is
// the chart's category axis.
func decodeOrderedCounts(body []byte) ([]string, []int, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}
	if len(envelope.Data) == 0 {
		return nil, nil, apperrors.ErrMalformedResponse
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, nil, apperrors.ErrMalformedResponse
	}

	var categories []string
	var data []int
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, apperrors.ErrMalformedResponse
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, nil, apperrors.ErrMalformedResponse
		}
		count, err := num.Int64()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
		}

		categories = append(categories, key)
		data = append(data, int(count))
	}

	// The chart is a fixed 24-hour axis; anything else is not the stats
	// contract, however well-formed the JSON.
	if len(categories) != domain.VolumeWindowHours {
		return nil, nil, fmt.Errorf("%w: expected %d buckets, got %d",
			apperrors.ErrMalformedResponse, domain.VolumeWindowHours, len(categories))
	}

	return categories, data, nil
}
