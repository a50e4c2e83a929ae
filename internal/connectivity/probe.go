package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Probe checks url with a HEAD request every interval and reports the result
// to m until ctx is done. Any response, whatever its status, counts as online.
// Transitions are logged to logger.
func Probe(ctx context.Context, client *http.Client, url string, interval time.Duration, m *Monitor, logger *slog.Logger) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	check := func() {
		online := reachable(ctx, client, url)
		if ctx.Err() != nil {
			return
		}
		if m.Set(online) {
			logger.Info("Connectivity changed", "online", online, "probe_url", url)
		}
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

func reachable(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
