package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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

const presignExpiry = 15 * time.Minute

// PhotoKeyPrefix is the object key prefix owned by userID.
func PhotoKeyPrefix(userID string) string {
	return "users/" + userID + "/"
}

// NewPhotoKey returns a fresh object key under the user's prefix.
func NewPhotoKey(userID string, now time.Time) string {
	return fmt.Sprintf("%s%d/%d/%d/%v", PhotoKeyPrefix(userID), now.Year(), now.Month(), now.Day(), uuid.New())
}

// PhotoService hands out presigned URLs for moment photos.
type PhotoService struct {
	config *config.Config
}

func NewPhotoService(cfg *config.Config) *PhotoService {
	return &PhotoService{config: cfg}
}

func (s *PhotoService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	if s.config.S3Bucket == "" {
		return nil, fmt.Errorf("photo storage not configured: %w", common.ErrUnavailable)
	}
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// UploadURL returns an s3:// reference and a presigned PUT for it.
func (s *PhotoService) UploadURL(ctx context.Context, userID, contentType string) (ref, url string, err error) {
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return "", "", &models.ValidationError{Field: "content_type", Reason: "must be an image type"}
	}
	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := NewPhotoKey(userID, time.Now())
	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}
	return models.PhotoRefScheme + key, req.URL, nil
}

// URL resolves a stored photo reference to something a browser can load.
// Inline data: photos are returned unchanged.
func (s *PhotoService) URL(ctx context.Context, userID, ref string) (string, error) {
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	key, ok := models.PhotoKey(ref)
	if !ok {
		return "", &models.ValidationError{Field: "ref", Reason: "is not a photo reference"}
	}
	if !strings.HasPrefix(key, PhotoKeyPrefix(userID)) {
		return "", common.ErrorForbidden
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}
	bucket := s.config.S3Bucket
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
