package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/aristath/skusim/internal/modules/presentation"
)

// Location identifies a stored export.
type Location struct {
	URI string `json:"uri" msgpack:"uri"`
	Key string `json:"key" msgpack:"key"`
}

// Sink stores rendered export files.
type Sink interface {
	Put(ctx context.Context, name, contentType string, body []byte) (Location, error)
}

// Render produces the file bytes for view in format f.
func Render(f Format, view presentation.View) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatXLSX:
		err = WriteXLSX(&buf, view)
	default:
		err = WriteCSV(&buf, view, CSVOptions{})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// objectKey namespaces exports by day and a random id so repeated exports never collide.
func objectKey(prefix, name string, now time.Time) string {
	return path.Join(prefix, now.UTC().Format("2006/01/02"), uuid.NewString(), path.Base(name))
}

// FileSink writes exports below a local directory.
type FileSink struct {
	dir string
	now func() time.Time
}

// NewFileSink creates a FileSink rooted at dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &FileSink{dir: dir, now: time.Now}, nil
}

// Put writes body to <dir>/<yyyy/mm/dd>/<uuid>/<name>.
func (s *FileSink) Put(ctx context.Context, name, contentType string, body []byte) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}

	key := objectKey("", name, s.now())
	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return Location{}, fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(full, body, 0644); err != nil {
		return Location{}, fmt.Errorf("failed to write export: %w", err)
	}

	return Location{URI: "file://" + filepath.ToSlash(full), Key: key}, nil
}

// Uploader is the subset of manager.Uploader used by S3Sink.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads exports to an S3 bucket.
type S3Sink struct {
	uploader Uploader
	bucket   string
	prefix   string
	now      func() time.Time
}

// NewS3Sink wraps an existing uploader.
func NewS3Sink(uploader Uploader, bucket, prefix string) *S3Sink {
	return &S3Sink{uploader: uploader, bucket: bucket, prefix: prefix, now: time.Now}
}

// NewS3SinkFromEnv builds an S3Sink using the default AWS credential chain.
func NewS3SinkFromEnv(ctx context.Context, region, bucket, prefix string) (*S3Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return NewS3Sink(manager.NewUploader(client), bucket, prefix), nil
}

// Put uploads body under <prefix>/<yyyy/mm/dd>/<uuid>/<name>.
func (s *S3Sink) Put(ctx context.Context, name, contentType string, body []byte) (Location, error) {
	key := objectKey(s.prefix, name, s.now())

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Location{}, fmt.Errorf("failed to upload export to s3://%s/%s: %w", s.bucket, key, err)
	}

	uri := out.Location
	if uri == "" {
		uri = fmt.Sprintf("s3://%s/%s", s.bucket, key)
	}
	return Location{URI: uri, Key: key}, nil
}
