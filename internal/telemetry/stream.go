package telemetry

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

const (
	maxReconnectDelay   = 30 * time.Second
	baseReconnectDelay  = 1 * time.Second
	maxConsecutiveFails = 5
)

// StreamEvents connects to a collector WebSocket endpoint and streams
// events. It reconnects automatically on disconnect with exponential
// backoff. The token is sent as a Bearer Authorization header.
func StreamEvents(ctx context.Context, wsURL string, token string) (<-chan Event, error) {
	ch := make(chan Event, 64)
	go streamLoop(ctx, wsURL, token, ch)
	return ch, nil
}

func streamLoop(ctx context.Context, wsURL string, token string, ch chan<- Event) {
	defer close(ch)

	var lastTime time.Time
	consecutiveFails := 0

	for {
		if ctx.Err() != nil {
			return
		}

		err := streamOnce(ctx, wsURL, token, lastTime, ch, &lastTime)
		if ctx.Err() != nil {
			return
		}

		consecutiveFails++
		if err != nil {
			nudgelog.Log.Warn("WebSocket stream disconnected", "error", err, "failures", consecutiveFails)
		}

		if consecutiveFails >= maxConsecutiveFails {
			ev := NewEvent("stream_reconnecting", true)
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}

		delay := time.Duration(float64(baseReconnectDelay) * math.Pow(2, float64(min(consecutiveFails-1, 5))))
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func streamOnce(ctx context.Context, wsURL string, token string, after time.Time, ch chan<- Event, lastTime *time.Time) error {
	url := wsURL
	if !after.IsZero() {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "after=" + after.Format(time.RFC3339Nano)
	}

	opts := &websocket.DialOptions{}
	if token != "" {
		opts.HTTPHeader = http.Header{
			"Authorization": []string{"Bearer " + token},
		}
	}

	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			nudgelog.Log.Debug("Failed to parse WS event", "error", err)
			continue
		}

		if !ev.Time.IsZero() {
			*lastTime = ev.Time
		}

		select {
		case ch <- ev:
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "client closing")
			return ctx.Err()
		}
	}
}
