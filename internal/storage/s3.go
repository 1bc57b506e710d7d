// Package storage provides the S3 client shared by exports and database
// backups. Works against AWS, Cloudflare R2, and MinIO via the optional
// custom endpoint.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/config"
)

// Client wraps the S3 SDK for uploads, listing, and retention pruning.
type Client struct {
	s3       *s3.Client
	uploader *manager.Uploader
	bucket   string
	log      zerolog.Logger
}

// NewClient builds an S3 client from configuration. Returns nil (no error)
// when no bucket is configured; callers treat a nil client as "uploads
// disabled".
func NewClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Client, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // R2 and MinIO want path-style addressing
		}
	})

	return &Client{
		s3:       client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		log:      log.With().Str("component", "storage").Logger(),
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload streams an object to the bucket and returns its s3:// URI.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", c.bucket, key)
	c.log.Info().Str("uri", uri).Msg("Object uploaded")
	return uri, nil
}

// Object is a stored object's key and modification time.
type Object struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// List returns objects under a key prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
				Size:         aws.ToInt64(obj.Size),
			})
		}
	}

	return objects, nil
}

// Delete removes one object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// PruneOlderThan deletes objects under a prefix whose last-modified time is
// before the cutoff. Returns the number deleted.
func (c *Client) PruneOlderThan(ctx context.Context, prefix string, cutoff time.Time) (int, error) {
	objects, err := c.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := c.Delete(ctx, obj.Key); err != nil {
			return deleted, err
		}
		deleted++
	}

	if deleted > 0 {
		c.log.Info().Int("deleted", deleted).Str("prefix", prefix).Msg("Pruned old objects")
	}
	return deleted, nil
}
