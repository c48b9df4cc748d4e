// Package audio issues presigned URLs for diary recordings kept in an
// S3-compatible bucket. Clients upload bytes straight to the bucket; the
// server only ever hands out keys and short-lived URLs.
package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignExpiry is how long issued URLs stay valid.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Options locate the bucket and the credentials used to sign URLs.
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// S3Storage presigns uploads and downloads of audio objects.
type S3Storage struct {
	opts Options
	now  func() time.Time
}

func NewS3Storage(opts Options) *S3Storage {
	return &S3Storage{opts: opts, now: time.Now}
}

// StorageKey builds a fresh object key for a user's recording, keeping the
// original file extension (lower-cased).
func StorageKey(userID, ext string, d time.Time) string {
	return fmt.Sprintf("users/%s/%d/%d/%d/%v%s", userID, d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(ext))
}

func (s *S3Storage) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKey,
			s.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPut reserves a key for a new recording and returns it together with
// an upload URL.
func (s *S3Storage) PresignPut(ctx context.Context, userID, ext string) (string, string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.opts.Bucket
	key := StorageKey(userID, ext, s.now().UTC())

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignGet returns a download URL for an existing recording.
func (s *S3Storage) PresignGet(ctx context.Context, key string) (string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.opts.Bucket
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
