package s3store

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"shellos-packages/internal/config"
	ports "shellos-packages/internal/core/ports/output"
)

// Store is the durable artifact store backed by an S3-compatible endpoint.
// Object keys are deterministic per (name, version), so re-publishing the
// same version overwrites the stored object. A failed Put may leave partial
// bytes behind; they are never referenced by any catalog record.
type Store struct {
	api        *s3.Client
	presign    *s3.PresignClient
	bucket     string
	publicBase string
	presignTTL time.Duration
}

func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Store{
		api:        client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicURLBase, "/"),
		presignTTL: cfg.PresignTTL,
	}, nil
}

// Put streams body to key, invoking progress as bytes move, and returns the
// download URL for the stored object.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, progress ports.ProgressFunc) (string, error) {
	reader := &progressReader{r: body, total: size, fn: progress}

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          reader,
		ContentLength: &size,
	})
	if err != nil {
		return "", err
	}

	return s.downloadURL(ctx, key)
}

func (s *Store) downloadURL(ctx context.Context, key string) (string, error) {
	if s.publicBase != "" {
		return s.publicBase + "/" + key, nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.presignTTL
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// progressReader counts bytes as the SDK consumes the body.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    ports.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.fn != nil {
			p.fn(p.read, p.total)
		}
	}
	return n, err
}
