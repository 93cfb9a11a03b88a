package resultsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
)

// S3Sink exports reports as JSON objects in a bucket, keyed by run ID.
// The per-flush fan-in history is snappy-compressed before upload, since
// it is the one field whose size grows with run length.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink wraps an already-configured S3 client. Building that client
// (region, credentials, endpoint) is the caller's job.
func NewS3Sink(client *s3.Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// Export uploads report as "<prefix>/<run_id>.json" with the fan-in
// history separately uploaded as "<prefix>/<run_id>.fanin.snappy".
func (s *S3Sink) Export(ctx context.Context, report Report) error {
	history := report.HistoryMergeFanin
	report.HistoryMergeFanin = nil

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	key := fmt.Sprintf("%s/%s.json", s.prefix, report.Identity.RunID)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	}); err != nil {
		return fmt.Errorf("uploading report: %w", err)
	}

	if len(history) == 0 {
		return nil
	}
	return s.exportHistory(ctx, report.Identity.RunID, history)
}

func (s *S3Sink) exportHistory(ctx context.Context, runID string, history []int64) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling fan-in history: %w", err)
	}
	compressed := snappy.Encode(nil, raw)

	key := fmt.Sprintf("%s/%s.fanin.snappy", s.prefix, runID)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(compressed),
	}); err != nil {
		return fmt.Errorf("uploading fan-in history: %w", err)
	}
	return nil
}
