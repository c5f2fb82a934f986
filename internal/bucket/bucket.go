// Package bucket uploads saved transcripts to an S3-compatible object store
// such as AWS S3, Cloudflare R2 or MinIO.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"ytscribe/config"
)

// ErrObjectTooLarge is returned when the store rejects an object for its size.
var ErrObjectTooLarge = errors.New("bucket: object too large")

// Service uploads objects to a single configured bucket.
type Service interface {
	// PutObject puts object to the bucket having the content
	PutObject(
		ctx context.Context,
		key string,
		body io.Reader,
		contentType string,
		metadata map[string]string,
	) error

	// UploadFile uploads the file named filename inside rootPath
	UploadFile(ctx context.Context, rootPath, key, filename string) error
}

type service struct {
	client *s3.Client
	bucket string
}

// New creates a client for the bucket described by cfg. Static credentials are
// used when set; otherwise the default AWS credential chain applies. A custom
// endpoint switches to path-style addressing.
func New(ctx context.Context, cfg config.BucketConfig) (Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("bucket name is not configured")
	}

	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
		// transcripts are small and a failed mirror is not fatal
		awsConfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load S3 SDK configuration: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// R2 and MinIO reject some of the newer default checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &service{client: client, bucket: cfg.Name}, nil
}

// PutObject puts object to the bucket having the content
func (s *service) PutObject(
	ctx context.Context,
	key string,
	body io.Reader,
	contentType string,
	metadata map[string]string,
) error {

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})

	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "EntityTooLarge" {
			return fmt.Errorf("upload %s:%s: %w: %w", s.bucket, key, ErrObjectTooLarge, err)
		}

		return fmt.Errorf("couldn't upload object %s:%s: %w", s.bucket, key, err)
	}

	return nil
}

// UploadFile uploads a file to the bucket, detecting its content type
func (s *service) UploadFile(ctx context.Context, rootPath, key, filename string) error {

	file, err := SecureOpen(rootPath, filename)
	if err != nil {
		return fmt.Errorf("couldn't open the file %s: %w", filename, err)
	}
	defer file.Close()

	// Read the first 512 bytes for content type detection
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("couldn't read the file %s: %w", filename, err)
	}

	// Seek back to the beginning for the actual upload
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("couldn't seek to beginning of file %s: %w", filename, err)
	}

	contentType := http.DetectContentType(buffer[:n])
	return s.PutObject(ctx, key, file, contentType, nil)
}
