// Package source reads cell documents from the local filesystem or S3.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/cells/internal/errors"
)

const s3Scheme = "s3://"

// ObjectGetter is the part of the S3 client a Reader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Reader fetches documents by location. Locations are file paths or
// s3://bucket/key URLs. The S3 client is created on first use.
type Reader struct {
	region string

	mu     sync.Mutex
	client ObjectGetter
}

// Option configures a Reader.
type Option func(*Reader)

// WithS3Client uses client instead of one built from the default AWS
// configuration.
func WithS3Client(client ObjectGetter) Option {
	return func(r *Reader) {
		r.client = client
	}
}

// NewReader creates a Reader. region may be empty to use the SDK's
// default region resolution.
func NewReader(region string, opts ...Option) *Reader {
	r := &Reader{region: region}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the document at location.
func (r *Reader) Read(ctx context.Context, location string) ([]byte, error) {
	if !IsS3(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, errors.New("E060").WithPath(location).Wrap(err)
		}
		return data, nil
	}

	bucket, key, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	client, err := r.s3Client(ctx)
	if err != nil {
		return nil, errors.New("E061").WithPath(location).Wrap(err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E061").WithPath(location).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E061").WithPath(location).Wrap(err)
	}
	return data, nil
}

func (r *Reader) s3Client(ctx context.Context) (ObjectGetter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if r.region != "" {
		optFns = append(optFns, awsconfig.WithRegion(r.region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	r.client = s3.NewFromConfig(cfg)
	return r.client, nil
}

// IsS3 reports whether location is an s3:// URL.
func IsS3(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseS3 splits an s3://bucket/key URL.
func ParseS3(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !IsS3(location) || !ok || bucket == "" || key == "" {
		return "", "", errors.New("E060").
			WithPath(location).
			WithDetail("S3 locations must look like s3://bucket/key.")
	}
	return bucket, key, nil
}

// Name returns the base name of location, used for format detection.
func Name(location string) string {
	if IsS3(location) {
		return path.Base(strings.TrimPrefix(location, s3Scheme))
	}
	return path.Base(strings.ReplaceAll(location, `\`, "/"))
}
