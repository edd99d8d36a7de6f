package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/kalahboard/internal/filex"
	serverconfig "github.com/dmitrijs2005/kalahboard/internal/server/config"
)

// AvatarURLPrefix is where locally stored avatars are served from.
const AvatarURLPrefix = "/uploads/avatars"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// AvatarStore persists an avatar image under name and returns the URL it can
// be fetched from. The URL is either a server-relative path or absolute.
type AvatarStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// LocalAvatarStore keeps avatars in a directory served by the HTTP layer.
type LocalAvatarStore struct {
	dir string
}

// NewLocalAvatarStore creates dir when it does not exist.
func NewLocalAvatarStore(dir string) (*LocalAvatarStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalAvatarStore{dir: abs}, nil
}

func (s *LocalAvatarStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if _, err := filex.SaveFile(s.dir, name, r); err != nil {
		return "", err
	}
	return path.Join(AvatarURLPrefix, name), nil
}

type s3PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarStore uploads avatars to an S3 compatible bucket (MinIO in
// development) and links to them by path-style URL.
type S3AvatarStore struct {
	client   s3PutObjectAPI
	bucket   string
	endpoint string
}

// NewS3AvatarStore builds the client from the S3* settings of cfg.
func NewS3AvatarStore(ctx context.Context, cfg *serverconfig.Config) (*S3AvatarStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser, cfg.S3RootPassword, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3AvatarStore{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimRight(cfg.S3BaseEndpoint, "/"),
	}, nil
}

func (s *S3AvatarStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	// avatars are small and the SDK needs a seekable body to sign over plain HTTP
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}

	return s.endpoint + "/" + s.bucket + "/" + name, nil
}
