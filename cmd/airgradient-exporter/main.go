package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	airgradient "github.com/joshp123/airgradient-golang"
)

func main() {
	host := flag.String("host", envOrDefault("AIRGRADIENT_HOST", ""), "Device host or IP")
	addr := flag.String("addr", envOrDefault("AIRGRADIENT_EXPORTER_ADDR", ":9091"), "Listen address for /metrics")
	timeout := flag.Duration("timeout", 10*time.Second, "Device request timeout")
	flag.Parse()

	if *host == "" {
		log.Fatal("missing --host (or AIRGRADIENT_HOST)")
	}

	client, err := airgradient.NewClient(*host, airgradient.WithTimeout(*timeout))
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer client.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(airgradient.NewCollector(client))
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "airgradient_exporter_build_info",
		Help: "Build information",
		ConstLabels: prometheus.Labels{
			"version": airgradient.Version,
		},
	}, func() float64 { return 1 }))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("serving metrics for %s on %s", *host, *addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("http serve: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
