// Package mqttbridge polls one AirGradient device and republishes its
// readings to an MQTT broker.
package mqttbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	airgradient "github.com/joshp123/airgradient-golang"
)

const (
	defaultPrefix   = "airgradient"
	defaultInterval = 30 * time.Second
	connectTimeout  = 10 * time.Second
)

// Config holds broker and polling settings.
type Config struct {
	BrokerURL   string
	Username    string
	Password    string
	ClientID    string
	TopicPrefix string
	Interval    time.Duration
}

// Bridge owns the MQTT connection and the poll loop.
type Bridge struct {
	device   *airgradient.Client
	mqtt     mqtt.Client
	prefix   string
	interval time.Duration
}

// New connects to the broker and returns a running-ready bridge. The
// broker keeps a retained "offline" status via the last will until the
// bridge publishes "online".
func New(cfg Config, device *airgradient.Client) (*Bridge, error) {
	if strings.TrimSpace(cfg.BrokerURL) == "" {
		return nil, fmt.Errorf("mqtt broker url is required")
	}

	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "airgradient-mqtt"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetWill(statusTopic(prefix), "offline", 0, true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt: %w", token.Error())
	}

	return &Bridge{
		device:   device,
		mqtt:     client,
		prefix:   prefix,
		interval: interval,
	}, nil
}

// Run polls until the context is cancelled, publishing one retained
// reading per poll. A failed poll is logged and skipped; the next tick
// retries from scratch.
func (b *Bridge) Run(ctx context.Context) error {
	b.publishStatus("online")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		b.pollOnce(ctx)
		select {
		case <-ctx.Done():
			b.publishStatus("offline")
			b.mqtt.Disconnect(250)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *Bridge) pollOnce(ctx context.Context) {
	measures, err := b.device.CurrentMeasures(ctx)
	if err != nil {
		log.Printf("airgradient poll failed: %v", err)
		return
	}

	reading := NewReading(measures, time.Now())
	payload, err := json.Marshal(reading)
	if err != nil {
		log.Printf("encode reading: %v", err)
		return
	}

	if token := b.mqtt.Publish(reading.Topic(b.prefix), 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("publish measures: %v", token.Error())
	}
}

func (b *Bridge) publishStatus(status string) {
	if token := b.mqtt.Publish(statusTopic(b.prefix), 0, true, status); token.Wait() && token.Error() != nil {
		log.Printf("publish status: %v", token.Error())
	}
}

func statusTopic(prefix string) string {
	return prefix + "/bridge/status"
}
