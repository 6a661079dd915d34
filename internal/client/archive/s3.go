// Package archive copies uploaded statements to an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrNoBucket = errors.New("archive bucket not configured")

// Settings configures the archive. Endpoint is optional and switches the
// client to path-style addressing (MinIO and friends).
type Settings struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// PutObjectAPI is the slice of the S3 client the archiver uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Overridable in tests.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type S3Archiver struct {
	client PutObjectAPI
	bucket string
	now    func() time.Time
}

// NewS3Archiver wraps an existing client.
func NewS3Archiver(client PutObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, now: time.Now}
}

// New builds an archiver from settings. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, s Settings) (*S3Archiver, error) {
	if s.Bucket == "" {
		return nil, ErrNoBucket
	}

	opts := []func(*config.LoadOptions) error{}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Archiver(client, s.Bucket), nil
}

// Key is the object key for a statement: <user>/<yyyy>/<mm>/<dd>/<uuid>-<file>.
func (a *S3Archiver) Key(userID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s-%s", userID, a.now().UTC().Format("2006/01/02"), uuid.NewString(), filepath.Base(fileName))
}

// Archive stores content and returns its s3:// location.
func (a *S3Archiver) Archive(ctx context.Context, userID, fileName string, content []byte) (string, error) {
	key := a.Key(userID, fileName)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}
