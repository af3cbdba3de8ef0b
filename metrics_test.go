package airgradient

import (
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, currentMeasuresBody)
	})

	collector := NewCollector(client)
	if count := testutil.CollectAndCount(collector); count == 0 {
		t.Fatal("expected metrics from collector")
	}

	if got := testutil.ToFloat64(collector.scrapeSuccess); got != 1 {
		t.Fatalf("expected scrape success 1, got %v", got)
	}
	// Canonical PM2.5 is the compensated value from the payload.
	if got := testutil.ToFloat64(collector.pm02Ugm3); got != 7 {
		t.Fatalf("expected compensated pm02, got %v", got)
	}
	if got := testutil.ToFloat64(collector.pm02RawUgm3); got != 10 {
		t.Fatalf("expected raw pm02, got %v", got)
	}
}

func TestCollectorScrapeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	collector := NewCollector(client)
	if count := testutil.CollectAndCount(collector); count == 0 {
		t.Fatal("expected metrics from collector")
	}
	if got := testutil.ToFloat64(collector.scrapeSuccess); got != 0 {
		t.Fatalf("expected scrape success 0, got %v", got)
	}
}
