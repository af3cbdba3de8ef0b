package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	airgradient "github.com/joshp123/airgradient-golang"
	"github.com/joshp123/airgradient-golang/internal/mqttbridge"
)

func main() {
	host := flag.String("host", envOrDefault("AIRGRADIENT_HOST", ""), "Device host or IP")
	broker := flag.String("broker", envOrDefault("AIRGRADIENT_MQTT_BROKER", ""), "MQTT broker URL (tcp://host:1883)")
	prefix := flag.String("topic-prefix", envOrDefault("AIRGRADIENT_MQTT_PREFIX", "airgradient"), "MQTT topic prefix")
	clientID := flag.String("client-id", "airgradient-mqtt", "MQTT client id")
	interval := flag.Duration("interval", 30*time.Second, "Poll interval")
	timeout := flag.Duration("timeout", 10*time.Second, "Device request timeout")
	flag.Parse()

	if *host == "" {
		log.Fatal("missing --host (or AIRGRADIENT_HOST)")
	}
	if *broker == "" {
		log.Fatal("missing --broker (or AIRGRADIENT_MQTT_BROKER)")
	}

	device, err := airgradient.NewClient(*host, airgradient.WithTimeout(*timeout))
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer device.Close()

	bridge, err := mqttbridge.New(mqttbridge.Config{
		BrokerURL:   *broker,
		Username:    os.Getenv("AIRGRADIENT_MQTT_USERNAME"),
		Password:    os.Getenv("AIRGRADIENT_MQTT_PASSWORD"),
		ClientID:    *clientID,
		TopicPrefix: *prefix,
		Interval:    *interval,
	}, device)
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("bridging %s to %s every %s", *host, *broker, *interval)
	if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bridge: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
