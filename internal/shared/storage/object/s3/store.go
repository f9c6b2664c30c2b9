package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-tailor/internal/shared/storage/object"
)

// maxUploadBytes bounds the in-memory buffer used to make uploads seekable.
const maxUploadBytes = 64 << 20

// Options configures an S3 or S3-compatible bucket.
type Options struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string // e.g. a MinIO or R2 URL; enables path-style addressing
	PublicURL       string // base for public object URLs; derived from bucket/region when empty
	AccessKeyID     string
	SecretAccessKey string
	HTTPClient      *http.Client
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	if opts.HTTPClient != nil {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(opts.HTTPClient))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    normalizePrefix(opts.Prefix),
		publicURL: publicBase(opts.PublicURL, endpoint, opts.Bucket, cfg.Region),
	}, nil
}

// Upload puts the object with a public-read ACL.
func (s *Store) Upload(ctx context.Context, storagePath string, r io.Reader, contentType string) (object.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return object.Artifact{}, err
	}
	if !object.ValidPath(storagePath) {
		return object.Artifact{}, fmt.Errorf("%w: invalid storage key %q", object.ErrStorage, storagePath)
	}

	// A seekable body lets the SDK sign the payload without a trailing checksum.
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return object.Artifact{}, fmt.Errorf("%w: read body: %v", object.ErrStorage, err)
	}
	if len(data) > maxUploadBytes {
		return object.Artifact{}, fmt.Errorf("%w: object exceeds %d bytes", object.ErrStorage, maxUploadBytes)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	objectKey := applyPrefix(s.prefix, storagePath)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           s3types.ObjectCannedACLPublicRead,
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return object.Artifact{}, fmt.Errorf("%w: s3 put object bucket=%s key=%s: %v", object.ErrStorage, s.bucket, objectKey, err)
	}

	return object.Artifact{
		PublicURL:   s.publicURL + "/" + objectKey,
		StoragePath: storagePath,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, storagePath)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("%w: s3 get object bucket=%s key=%s: %v", object.ErrStorage, s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objectKey := applyPrefix(s.prefix, storagePath)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("%w: s3 delete object bucket=%s key=%s: %v", object.ErrStorage, s.bucket, objectKey, err)
	}
	return nil
}

// PathFromURL maps a public URL under this bucket back to its storage path.
func (s *Store) PathFromURL(publicURL string) (string, bool) {
	base := s.publicURL + "/"
	if !strings.HasPrefix(publicURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, base)
	if s.prefix != "" {
		if !strings.HasPrefix(key, s.prefix+"/") {
			return "", false
		}
		key = strings.TrimPrefix(key, s.prefix+"/")
	}
	if !object.ValidPath(key) {
		return "", false
	}
	return key, true
}

func publicBase(explicit, endpoint, bucket, region string) string {
	if explicit = strings.TrimRight(strings.TrimSpace(explicit), "/"); explicit != "" {
		return explicit
	}
	if endpoint != "" {
		return endpoint + "/" + bucket
	}
	if region == "" || region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
