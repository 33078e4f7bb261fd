package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/crosspost-app/crosspost/configs"
)

// Uploader stores intermediate transcoded assets and deletes them again once
// a publish attempt finishes.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// R2Uploader stores temp assets in Cloudflare R2 through the S3 API.
type R2Uploader struct {
	cfg    config.R2
	client *s3.Client
}

func NewR2Uploader(cfg config.R2) (*R2Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure R2 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})

	return &R2Uploader{cfg: cfg, client: client}, nil
}

func (r *R2Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(r.cfg.PublicBaseURL, "/"), key), nil
}

func (r *R2Uploader) Delete(ctx context.Context, fileURL string) error {
	u, err := url.Parse(fileURL)
	if err != nil {
		return fmt.Errorf("invalid asset url %q: %w", fileURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")

	_, err = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

// TempKey builds a unique storage key for an intermediate asset.
func TempKey(ext string) string {
	id, err := gonanoid.New()
	if err != nil {
		// only fails when the OS entropy source does
		id = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return "tmp/" + id + ext
}
