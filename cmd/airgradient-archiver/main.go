package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	airgradient "github.com/joshp123/airgradient-golang"
	"github.com/joshp123/airgradient-golang/internal/archive"
)

func main() {
	host := flag.String("host", envOrDefault("AIRGRADIENT_HOST", ""), "Device host or IP")
	endpoint := flag.String("endpoint", envOrDefault("AIRGRADIENT_S3_ENDPOINT", ""), "S3-compatible endpoint")
	bucket := flag.String("bucket", envOrDefault("AIRGRADIENT_S3_BUCKET", ""), "Bucket for snapshots")
	prefix := flag.String("prefix", "airgradient/measures", "Object key prefix")
	region := flag.String("region", envOrDefault("AIRGRADIENT_S3_REGION", ""), "Bucket region")
	accessKeyFile := flag.String("access-key-file", "", "File containing the access key (overrides AIRGRADIENT_S3_ACCESS_KEY)")
	secretKeyFile := flag.String("secret-key-file", "", "File containing the secret key (overrides AIRGRADIENT_S3_SECRET_KEY)")
	interval := flag.Duration("interval", time.Minute, "Snapshot interval")
	timeout := flag.Duration("timeout", 10*time.Second, "Device request timeout")
	flag.Parse()

	if *host == "" {
		log.Fatal("missing --host (or AIRGRADIENT_HOST)")
	}

	accessKey, err := secret(*accessKeyFile, "AIRGRADIENT_S3_ACCESS_KEY")
	if err != nil {
		log.Fatalf("access key: %v", err)
	}
	secretKey, err := secret(*secretKeyFile, "AIRGRADIENT_S3_SECRET_KEY")
	if err != nil {
		log.Fatalf("secret key: %v", err)
	}

	device, err := airgradient.NewClient(*host, airgradient.WithTimeout(*timeout))
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer device.Close()

	store, err := archive.NewStore(archive.Config{
		Endpoint:  *endpoint,
		Bucket:    *bucket,
		Prefix:    *prefix,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    *region,
	})
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("archiving %s snapshots every %s", *host, *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		archiveOnce(ctx, device, store)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func archiveOnce(ctx context.Context, device *airgradient.Client, store *archive.Store) {
	payload, err := device.RawCurrentMeasures(ctx)
	if err != nil {
		log.Printf("snapshot failed: %v", err)
		return
	}

	// The serial keys the object path; a payload that does not parse is
	// not worth archiving.
	measures, err := airgradient.ParseMeasures(payload)
	if err != nil {
		log.Printf("snapshot failed: %v", err)
		return
	}

	key, err := store.Put(ctx, measures.SerialNumber, payload, time.Now())
	if err != nil {
		log.Printf("archive failed: %v", err)
		return
	}
	log.Printf("stored %s", key)
}

func secret(file, envKey string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	return os.Getenv(envKey), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
