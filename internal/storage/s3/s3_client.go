package s3

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"propcheck/internal/config"
	"propcheck/internal/document"
	"propcheck/internal/domain"
	"propcheck/internal/port"
)

// Source reads documents for analysis from S3 or an S3-compatible store. It never writes.
type Source struct {
	client        *s3.Client
	defaultBucket string
}

// NewS3Source creates a new S3-backed DocumentSource.
func NewS3Source(cfg *config.S3Config) (*Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &Source{
		client:        s3.NewFromConfig(awsCfg, s3Opts...),
		defaultBucket: cfg.Bucket,
	}, nil
}

// Open starts reading the object. An empty bucket means the configured default bucket.
// When the stored content type is missing or generic it is sniffed from the first bytes.
func (s *Source) Open(ctx context.Context, bucket, key string) (*port.SourceObject, error) {
	if bucket == "" {
		bucket = s.defaultBucket
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 open: bucket and key are required: %w", domain.ErrDocumentNotFound)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("s3 open %s/%s: %w", bucket, key, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("s3 open: %w", err)
	}

	size := int64(-1)
	if result.ContentLength != nil {
		size = *result.ContentLength
	}

	br := bufio.NewReaderSize(result.Body, document.SniffLength)
	header, _ := br.Peek(document.SniffLength)
	contentType := document.DetectContentType(header, aws.ToString(result.ContentType))

	return &port.SourceObject{
		Name:        path.Base(key),
		ContentType: contentType,
		Size:        size,
		Body:        readCloser{Reader: br, Closer: result.Body},
	}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
