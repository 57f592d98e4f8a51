// Package verify runs lightweight authenticated probes against a vendor API
// to confirm that an access token carries the expected permissions.
package verify

import (
	"context"
	"log"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status classifies a probe outcome. Unauthorized means the token itself is
// invalid or expired; Forbidden means the token is valid but the
// authorization under-requested scopes, which requires a fresh consent flow
// with a broader scope list, not a retry.
type Status string

const (
	StatusOK            Status = "ok"
	StatusUnauthorized  Status = "token invalid/expired"
	StatusForbidden     Status = "insufficient scope"
	StatusShapeMismatch Status = "response shape mismatch"
	StatusError         Status = "error"
	StatusHTTP          Status = "unexpected status"
)

// Probe is one representative lightweight endpoint of a target API.
type Probe struct {
	Name string

	// Fields are top-level JSON fields the response must contain. Empty
	// means no shape check.
	Fields []string

	// Do issues the request and returns the HTTP status and raw body.
	// token is empty for key-based providers whose probes close over their
	// own credentials.
	Do func(ctx context.Context, token string) (int, []byte, error)
}

// Result is one row of the verification report.
type Result struct {
	Probe  string `json:"probe"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var probeCounter metric.Int64Counter

func init() {
	meter := otel.Meter("apiprobe/internal/verify")
	probeCounter, _ = meter.Int64Counter("apiprobe.verify.probes",
		metric.WithDescription("Verification probe outcomes"))
}

// Run executes every probe and classifies the outcomes. It never fails the
// run: each row only annotates status for operator visibility.
func Run(ctx context.Context, provider string, probes []Probe, token string) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		r := runOne(ctx, p, token)
		log.Printf("[verify] %s %s: %s %s", provider, r.Probe, r.Status, r.Detail)
		probeCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("probe", p.Name),
			attribute.String("status", string(r.Status)),
		))
		results = append(results, r)
	}
	return results
}

func runOne(ctx context.Context, p Probe, token string) Result {
	status, body, err := p.Do(ctx, token)
	if err != nil {
		return Result{Probe: p.Name, Status: StatusError, Detail: err.Error()}
	}
	switch {
	case status == http.StatusUnauthorized:
		return Result{Probe: p.Name, Status: StatusUnauthorized}
	case status == http.StatusForbidden:
		return Result{Probe: p.Name, Status: StatusForbidden}
	case status < 200 || status >= 300:
		return Result{Probe: p.Name, Status: StatusHTTP, Detail: http.StatusText(status)}
	}
	if missing := missingFields(body, p.Fields); len(missing) > 0 {
		return Result{Probe: p.Name, Status: StatusShapeMismatch, Detail: "missing: " + joinFields(missing)}
	}
	return Result{Probe: p.Name, Status: StatusOK}
}

// ScopeWarnings counts results that indicate an under-requested scope list.
func ScopeWarnings(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusForbidden {
			n++
		}
	}
	return n
}
