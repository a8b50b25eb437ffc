package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/invaders/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:        "us-east-1",
		S3RootUser:      "minioadmin",
		S3RootPassword:  "minioadmin",
		S3BaseEndpoint:  "http://127.0.0.1:9000",
		S3Bucket:        "avatars",
		S3PublicBaseURL: "http://cdn.local/avatars/",
	}
}

func TestNewS3Storage_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	st, err := NewS3Storage(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, st.presign)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Storage_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Storage(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config: no config")
}

func TestPresignAvatarUpload(t *testing.T) {
	origPut := presignPutObject
	t.Cleanup(func() { presignPutObject = origPut })

	var gotIn *s3.PutObjectInput
	var gotOpts s3.PresignOptions
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotIn = in
		for _, fn := range optFns {
			fn(&gotOpts)
		}
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/avatars/signed"}, nil
	}

	st := &S3Storage{bucket: "avatars", publicBaseURL: "http://cdn.local/avatars/"}
	now := time.UnixMilli(1700000000123)

	resp, err := st.PresignAvatarUpload(context.Background(), "p-1", "image/png", ".PNG", 1234, now)
	require.NoError(t, err)

	assert.Equal(t, "avatars/p-1-1700000000123.png", resp.Key)
	assert.Equal(t, "http://127.0.0.1:9000/avatars/signed", resp.UploadURL)
	assert.Equal(t, "http://cdn.local/avatars/avatars/p-1-1700000000123.png", resp.PublicURL)
	assert.True(t, resp.ExpiresAt.Equal(now.Add(PresignExpiry)))

	require.NotNil(t, gotIn)
	assert.Equal(t, "avatars", aws.ToString(gotIn.Bucket))
	assert.Equal(t, resp.Key, aws.ToString(gotIn.Key))
	assert.Equal(t, "image/png", aws.ToString(gotIn.ContentType))
	assert.Equal(t, int64(1234), aws.ToInt64(gotIn.ContentLength))
	assert.Equal(t, PresignExpiry, gotOpts.Expires)
}

func TestPresignAvatarUpload_BadExtensionFallsBack(t *testing.T) {
	origPut := presignPutObject
	t.Cleanup(func() { presignPutObject = origPut })

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "u"}, nil
	}

	st := &S3Storage{bucket: "avatars", publicBaseURL: "http://cdn.local"}
	resp, err := st.PresignAvatarUpload(context.Background(), "p-1", "image/jpeg", "../../etc", 10, time.UnixMilli(5))
	require.NoError(t, err)
	assert.Equal(t, "avatars/p-1-5.jpg", resp.Key)
	assert.Equal(t, "http://cdn.local/avatars/p-1-5.jpg", resp.PublicURL)
}

func TestPresignAvatarUpload_Error(t *testing.T) {
	origPut := presignPutObject
	t.Cleanup(func() { presignPutObject = origPut })

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}

	st := &S3Storage{bucket: "avatars"}
	_, err := st.PresignAvatarUpload(context.Background(), "p-1", "image/png", "png", 10, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presign put: sign failed")
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://x/a/b.png", PublicURL("http://x/a/", "b.png"))
	assert.Equal(t, "http://x/a/b.png", PublicURL("http://x/a", "/b.png"))
}
