package utils

import (
	"bytes"
	"context"
	"fmt"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ScanImageStore uploads the photos submitted for recognition so the saved
// records can link back to them.
type ScanImageStore struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

func NewScanImageStore(ctx context.Context, region, bucket, cdnBaseURL string) (*ScanImageStore, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}
	return &ScanImageStore{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		cdnBaseURL: cdnBaseURL,
	}, nil
}

// Upload stores JPEG bytes under a run-scoped key and returns the public URL.
func (s *ScanImageStore) Upload(ctx context.Context, runID string, data []byte) (string, error) {
	key := fmt.Sprintf("food-scans/%s-%d.jpg", runID, time.Now().UnixNano())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.cdnBaseURL, key), nil
}
