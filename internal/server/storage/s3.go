// Package storage issues presigned upload URLs for profile avatars on an
// S3-compatible object store (MinIO in development).
package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/invaders/internal/filex"
	"github.com/dmitrijs2005/invaders/internal/models"
	sc "github.com/dmitrijs2005/invaders/internal/server/config"
)

// PresignExpiry is how long an upload URL stays valid.
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
)

// AvatarStore hands out upload slots for avatar images.
type AvatarStore interface {
	PresignAvatarUpload(ctx context.Context, profileID, contentType, ext string, size int64, now time.Time) (*models.AvatarUploadResponse, error)
}

type S3Storage struct {
	bucket        string
	publicBaseURL string
	presign       *s3.PresignClient
}

// NewS3Storage builds the presign client from the server config. Path-style
// addressing is forced so MinIO endpoints work.
func NewS3Storage(ctx context.Context, cfg *sc.Config) (*S3Storage, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Storage{
		bucket:        cfg.S3Bucket,
		publicBaseURL: cfg.S3PublicBaseURL,
		presign:       newS3PresignClient(client),
	}, nil
}

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

// AvatarKey names the object for a profile's avatar uploaded at now.
func AvatarKey(profileID, ext string, now time.Time) string {
	return fmt.Sprintf("avatars/%s-%d.%s", profileID, now.UnixMilli(), ext)
}

// PublicURL joins the public base URL and key with exactly one slash.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// PresignAvatarUpload signs a PUT for exactly size bytes of contentType, so
// the store itself rejects a body larger than the one announced.
func (s *S3Storage) PresignAvatarUpload(ctx context.Context, profileID, contentType, ext string, size int64, now time.Time) (*models.AvatarUploadResponse, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if !extPattern.MatchString(ext) {
		ext = filex.ExtensionFor(contentType)
	}

	key := AvatarKey(profileID, ext, now)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &models.AvatarUploadResponse{
		UploadURL: req.URL,
		PublicURL: PublicURL(s.publicBaseURL, key),
		Key:       key,
		ExpiresAt: now.Add(PresignExpiry),
	}, nil
}
