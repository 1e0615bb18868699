package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (io.ReadCloser, error) {
		out, err := c.GetObject(ctx, in)
		if err != nil {
			return nil, err
		}
		return out.Body, nil
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

// S3Config points S3Storage at a bucket. Endpoint is set for MinIO or other
// S3-compatible servers.
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// S3Storage keeps attachments in an S3 bucket. Recorded paths look like
// s3://bucket/prefix/name.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage builds a client from cfg. Static credentials are used when
// both keys are set, the default AWS chain otherwise.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Storage{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (s *S3Storage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Storage) url() string { return "s3://" + s.bucket + "/" }

func (s *S3Storage) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := s.key(name)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if err := putObject(s.client, ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.url() + key, nil
}

func (s *S3Storage) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	key, ok := s.keyFromPath(storedPath)
	if !ok {
		return nil, ErrUnmanaged
	}
	body, err := getObject(s.client, ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return body, nil
}

func (s *S3Storage) Delete(ctx context.Context, storedPath string) error {
	key, ok := s.keyFromPath(storedPath)
	if !ok {
		return ErrUnmanaged
	}
	if err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Manages(storedPath string) bool {
	_, ok := s.keyFromPath(storedPath)
	return ok
}

// keyFromPath accepts only keys under the configured prefix.
func (s *S3Storage) keyFromPath(storedPath string) (string, bool) {
	key, ok := strings.CutPrefix(storedPath, s.url())
	if !ok {
		return "", false
	}
	name, ok := strings.CutPrefix(key, s.key(""))
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return key, true
}
