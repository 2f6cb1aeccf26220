// Command hookview-seed fills an object-store bucket with webhook records for
// local development and demos. Records can be generated randomly or pinned
// through a YAML scenario file. Half of the generated blobs are written with
// the legacy capitalized field casing so a seeded bucket exercises both
// conventions the loader accepts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hookview/hookview/internal/blobstore"
)

type seedRecord struct {
	ID          string            `yaml:"id"`
	ReceivedAt  string            `yaml:"receivedAt"`
	Method      string            `yaml:"method"`
	Path        string            `yaml:"path"`
	Headers     map[string]string `yaml:"headers"`
	QueryParams map[string]string `yaml:"queryParameters"`
	RawBody     string            `yaml:"rawBody"`
	ContentType string            `yaml:"contentType"`
	SourceIP    string            `yaml:"sourceIp"`
}

type scenario struct {
	Records []seedRecord `yaml:"records"`
}

// canonicalBlob carries the lower-camel field names used by current writers.
type canonicalBlob struct {
	ID          string            `json:"id"`
	ReceivedAt  string            `json:"receivedAt"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"queryParameters"`
	RawBody     string            `json:"rawBody"`
	ContentType string            `json:"contentType"`
	SourceIP    string            `json:"sourceIp"`
}

// legacyBlob carries the capitalized field names used by historical writers.
type legacyBlob struct {
	ID          string            `json:"Id"`
	ReceivedAt  string            `json:"ReceivedAt"`
	Method      string            `json:"Method"`
	Path        string            `json:"Path"`
	Headers     map[string]string `json:"Headers"`
	QueryParams map[string]string `json:"QueryParameters"`
	RawBody     string            `json:"RawBody"`
	ContentType string            `json:"ContentType"`
	SourceIP    string            `json:"SourceIp"`
}

func main() {
	var (
		endpoint  = flag.String("endpoint", os.Getenv("HOOKVIEW_STORE_ENDPOINT"), "object store endpoint")
		region    = flag.String("region", os.Getenv("HOOKVIEW_STORE_REGION"), "object store region")
		accessKey = flag.String("access-key", os.Getenv("HOOKVIEW_STORE_ACCESS_KEY"), "access key")
		secretKey = flag.String("secret-key", os.Getenv("HOOKVIEW_STORE_SECRET_KEY"), "secret key")
		bucket    = flag.String("bucket", "webhooks", "bucket name")
		useSSL    = flag.Bool("ssl", true, "use TLS for the store connection")
		count     = flag.Int("count", 50, "number of random records to generate")
		days      = flag.Int("days", 3, "spread random records across this many days, ending today")
		file      = flag.String("scenario", "", "YAML scenario file with explicit records")
		seed      = flag.Int64("seed", 0, "random seed (0 = time-based)")
	)
	flag.Parse()

	store, err := blobstore.NewFromConfig(blobstore.Config{
		Endpoint:  *endpoint,
		Region:    *region,
		AccessKey: *accessKey,
		SecretKey: *secretKey,
		Bucket:    *bucket,
		UseSSL:    *useSSL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, ok := store.(blobstore.Unconfigured); ok {
		fmt.Fprintln(os.Stderr, "Error: store endpoint and credentials are required")
		os.Exit(1)
	}

	faker := gofakeit.New(*seed)

	records, err := buildRecords(faker, *file, *count, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	written := 0
	for i, rec := range records {
		data, err := marshalRecord(rec, i%2 == 1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: encoding record %s: %v\n", rec.ID, err)
			os.Exit(1)
		}
		key := rec.ReceivedAt[:10] + "/" + uuid.NewString() + ".json"
		if err := store.WriteBytes(ctx, key, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing %s: %v\n", key, err)
			os.Exit(1)
		}
		written++
	}

	fmt.Printf("Seeded %d webhook records into bucket %q\n", written, *bucket)
}

func buildRecords(faker *gofakeit.Faker, scenarioPath string, count, days int) ([]seedRecord, error) {
	if scenarioPath != "" {
		data, err := os.ReadFile(scenarioPath)
		if err != nil {
			return nil, fmt.Errorf("reading scenario: %w", err)
		}
		var sc scenario
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, fmt.Errorf("parsing scenario: %w", err)
		}
		for i, rec := range sc.Records {
			if rec.ID == "" || len(rec.ReceivedAt) < 10 {
				return nil, fmt.Errorf("scenario record %d needs id and receivedAt", i)
			}
		}
		return sc.Records, nil
	}

	if days < 1 {
		days = 1
	}
	records := make([]seedRecord, 0, count)
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		at := now.AddDate(0, 0, -faker.Number(0, days-1)).
			Add(-time.Duration(faker.Number(0, 86399)) * time.Second)
		records = append(records, randomRecord(faker, at))
	}
	return records, nil
}

func randomRecord(faker *gofakeit.Faker, at time.Time) seedRecord {
	event := faker.RandomString([]string{"order.created", "order.paid", "user.updated", "invoice.sent"})
	body := fmt.Sprintf(`{"event":%q,"conversation":{"id":"conv-%s"},"amount":%d}`,
		event, faker.LetterN(8), faker.Number(1, 9000))

	return seedRecord{
		ID:         uuid.NewString(),
		ReceivedAt: at.Format(time.RFC3339),
		Method:     faker.HTTPMethod(),
		Path:       "/hooks/" + faker.RandomString([]string{"github", "stripe", "slack", "shopify"}),
		Headers: map[string]string{
			"User-Agent":   faker.UserAgent(),
			"X-Event-Type": event,
		},
		QueryParams: map[string]string{"delivery": faker.LetterN(12)},
		RawBody:     body,
		ContentType: "application/json",
		SourceIP:    faker.IPv4Address(),
	}
}

func marshalRecord(rec seedRecord, legacy bool) ([]byte, error) {
	if legacy {
		return json.Marshal(legacyBlob(rec))
	}
	return json.Marshal(canonicalBlob(rec))
}
