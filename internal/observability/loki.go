// Package observability ships structured flow events to Grafana Loki when
// configured; with no configuration it is a silent no-op.
package observability

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

type LokiClient struct {
	url        string
	username   string
	apiKey     string
	httpClient *http.Client
	enabled    bool
	appName    string
	runID      string
}

// Loki Push API format
type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

var (
	defaultClient *LokiClient
	inflight      sync.WaitGroup
)

// Init configures the package-level client from the environment. runID labels
// every event of this process run.
func Init(runID string) {
	url := os.Getenv("GRAFANA_LOKI_URL")
	username := os.Getenv("GRAFANA_LOKI_USER")
	apiKey := os.Getenv("GRAFANA_LOKI_API_KEY")

	appName := os.Getenv("APP_ENV")
	if appName == "" {
		appName = "apiprobe"
	}

	if url == "" || username == "" || apiKey == "" {
		defaultClient = &LokiClient{enabled: false, appName: appName, runID: runID}
		return
	}

	defaultClient = &LokiClient{
		url:        url + "/loki/api/v1/push",
		username:   username,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		enabled:    true,
		appName:    appName,
		runID:      runID,
	}
	log.Println("[observability] Loki client initialized")
}

// LogFlowEvent records one stage of an OAuth or verification run.
func LogFlowEvent(provider, stage string, data map[string]any) {
	Push(map[string]string{"provider": provider, "stage": stage}, data)
}

func Push(labels map[string]string, data map[string]any) {
	if defaultClient == nil || !defaultClient.enabled {
		return
	}

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defaultClient.push(labels, data)
	}()
}

// Flush waits for in-flight pushes, up to timeout. The process exits right
// after the terminal flow event is emitted, so main must flush or the event
// is lost.
func Flush(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

func (c *LokiClient) push(labels map[string]string, data map[string]any) {
	if labels == nil {
		labels = make(map[string]string)
	}
	labels["app"] = c.appName
	labels["run_id"] = c.runID

	dataJSON, err := json.Marshal(data)
	if err != nil {
		log.Printf("[observability] Loki: failed to marshal data: %v", err)
		return
	}

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)

	req := lokiPushRequest{
		Streams: []lokiStream{
			{
				Stream: labels,
				Values: [][]string{
					{timestamp, string(dataJSON)},
				},
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		log.Printf("[observability] Loki: failed to marshal request: %v", err)
		return
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[observability] Loki: failed to create request: %v", err)
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[observability] Loki: push failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[observability] Loki: push returned status %d", resp.StatusCode)
	}
}
