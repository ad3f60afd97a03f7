package storagex

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of the S3 client used by S3.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config configures the S3 backend. Endpoint is set for MinIO and friends.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3 stores avatars as objects keyed "avatars/<name>".
type S3 struct {
	api    ObjectAPI
	bucket string
}

// NewS3 builds an S3 client from cfg. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storagex: s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storagex: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3WithAPI(client, cfg.Bucket), nil
}

// NewS3WithAPI wraps an existing client.
func NewS3WithAPI(api ObjectAPI, bucket string) *S3 {
	return &S3{api: api, bucket: bucket}
}

// Put uploads tempPath and removes it once the upload succeeded.
func (s *S3) Put(ctx context.Context, tempPath, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	f, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("storagex: open upload: %w", err)
	}
	defer f.Close()

	key := servedPath(name)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := s.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("storagex: put %s: %w", key, err)
	}
	_ = f.Close()
	_ = os.Remove(tempPath)
	return key, nil
}

// Remove deletes the object at relPath.
func (s *S3) Remove(ctx context.Context, relPath string) error {
	name, err := nameFromServed(relPath)
	if err != nil {
		return err
	}
	_, err = s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(servedPath(name)),
	})
	if err != nil {
		return fmt.Errorf("storagex: delete %s: %w", relPath, err)
	}
	return nil
}
