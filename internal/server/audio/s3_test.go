package audio

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "audio",
	}
}

// stubAWS replaces the AWS constructors for the duration of the test.
func stubAWS(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

func TestStorageKey_Layout(t *testing.T) {
	d := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	key := StorageKey("u1", ".MP3", d)
	assert.Regexp(t, regexp.MustCompile(`^users/u1/2026/2/3/[0-9a-f-]{36}\.mp3$`), key)
	assert.NotEqual(t, key, StorageKey("u1", ".MP3", d))
}

func TestPresignClient_AppliesOptions(t *testing.T) {
	stubAWS(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s := NewS3Storage(testOptions())
	pc, err := s.presignClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pc)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestPresignPut_Success(t *testing.T) {
	stubAWS(t)

	var gotBucket, gotKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = *in.Bucket, *in.Key
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, PresignExpiry, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://put/" + *in.Key}, nil
	}

	s := NewS3Storage(testOptions())
	s.now = func() time.Time { return time.Date(2026, 7, 8, 0, 0, 0, 0, time.UTC) }

	key, url, err := s.PresignPut(context.Background(), "u1", ".wav")
	require.NoError(t, err)
	assert.Equal(t, "audio", gotBucket)
	assert.Equal(t, gotKey, key)
	assert.Regexp(t, `^users/u1/2026/7/8/.*\.wav$`, key)
	assert.Equal(t, "http://put/"+key, url)
}

func TestPresignPut_Errors(t *testing.T) {
	stubAWS(t)
	s := NewS3Storage(testOptions())

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}
	_, _, err := s.PresignPut(context.Background(), "u1", ".mp3")
	assert.EqualError(t, err, "presign-put-fail")

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, _, err = s.PresignPut(context.Background(), "u1", ".mp3")
	assert.EqualError(t, err, "load-fail")
}

func TestPresignGet(t *testing.T) {
	stubAWS(t)
	s := NewS3Storage(testOptions())

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "audio", *in.Bucket)
		return &v4.PresignedHTTPRequest{URL: "http://get/" + *in.Key}, nil
	}
	url, err := s.PresignGet(context.Background(), "users/u1/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "http://get/users/u1/a.mp3", url)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-get-fail")
	}
	_, err = s.PresignGet(context.Background(), "k")
	assert.EqualError(t, err, "presign-get-fail")
}
