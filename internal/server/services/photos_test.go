package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPresign(t *testing.T) *[]string {
	t.Helper()
	var keys []string
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() { presignPutObject, presignGetObject = origPut, origGet })

	presignPutObject = func(_ *s3.PresignClient, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		keys = append(keys, *in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/put/" + *in.Key, Method: "PUT"}, nil
	}
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		keys = append(keys, *in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/get/" + *in.Key, Method: "GET"}, nil
	}
	return &keys
}

func TestPhotoService_UploadURL(t *testing.T) {
	keys := stubPresign(t)
	svc := NewPhotoService(testConfig())

	ref, url, err := svc.UploadURL(context.Background(), "u1", "image/jpeg")
	require.NoError(t, err)
	require.Len(t, *keys, 1)

	key, ok := models.PhotoKey(ref)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "users/u1/"))
	assert.Equal(t, "https://s3.test/put/"+key, url)

	_, _, err = svc.UploadURL(context.Background(), "u1", "text/plain")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPhotoService_URL(t *testing.T) {
	stubPresign(t)
	svc := NewPhotoService(testConfig())
	ctx := context.Background()

	inline := "data:image/png;base64,AAAA"
	got, err := svc.URL(ctx, "u1", inline)
	require.NoError(t, err)
	assert.Equal(t, inline, got)

	got, err = svc.URL(ctx, "u1", "s3://users/u1/2026/10/18/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/get/users/u1/2026/10/18/abc", got)

	_, err = svc.URL(ctx, "u1", "s3://users/u2/2026/10/18/abc")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.URL(ctx, "u1", "https://elsewhere/x.png")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPhotoService_Unconfigured(t *testing.T) {
	cfg := testConfig()
	cfg.S3Bucket = ""
	svc := NewPhotoService(cfg)

	_, _, err := svc.UploadURL(context.Background(), "u1", "")
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestPhotoService_ConfigLoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, _, err := NewPhotoService(testConfig()).UploadURL(context.Background(), "u1", "image/png")
	assert.EqualError(t, err, "load-fail")
}

func TestNewPhotoKey(t *testing.T) {
	k := NewPhotoKey("u9", time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(k, "users/u9/2026/3/4/"), k)
}
