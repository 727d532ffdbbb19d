// Package s3 exports stored plans as JSON documents to an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"concierge/internal/app/policies"
	"concierge/internal/domain/trip"
)

const contentTypeJSON = "application/json"

// Archive uploads plans and returns their public URL.
type Archive struct {
	bucket         string
	publicBaseURL  string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

type Options struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

func NewArchive(opts Options, logger *slog.Logger) (*Archive, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(opts.PublicEndpoint)
	if base == "" {
		base = endpoint
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Archive{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        client,
		logger:        logger,
	}, nil
}

func (a *Archive) Archive(ctx context.Context, bookingID trip.BookingID, planID string, resp trip.AgentResponse) (string, error) {
	body, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3: encode plan: %w", err)
	}
	key, err := objectKey(bookingID, planID)
	if err != nil {
		return "", err
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
		UserMetadata: map[string]string{
			"booking-id": string(bookingID),
			"plan-id":    planID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	publicURL := objectURL(a.publicBaseURL, a.bucket, key)
	a.logger.InfoContext(ctx, "plan archived", "bucket", a.bucket, "key", key, "url", publicURL)
	return publicURL, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.bucketInitOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/plans/*"]}]}`, a.bucket)
		if err := a.client.SetBucketPolicy(ctx, a.bucket, policy); err != nil {
			a.bucketInitErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return a.bucketInitErr
}

func objectKey(bookingID trip.BookingID, planID string) (string, error) {
	b := strings.Trim(strings.TrimSpace(string(bookingID)), "/")
	p := strings.Trim(strings.TrimSpace(planID), "/")
	if b == "" || p == "" || strings.Contains(b, "..") || strings.Contains(p, "..") {
		return "", fmt.Errorf("s3: invalid object key for booking %q plan %q", bookingID, planID)
	}
	return path.Join("plans", url.PathEscape(b), url.PathEscape(p)+".json"), nil
}

func objectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(key, "/"))
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// Disabled reports policies.ErrArchiveDisabled for every export.
type Disabled struct{}

func (Disabled) Archive(context.Context, trip.BookingID, string, trip.AgentResponse) (string, error) {
	return "", policies.ErrArchiveDisabled
}

var (
	_ policies.PlanArchive = (*Archive)(nil)
	_ policies.PlanArchive = Disabled{}
)
