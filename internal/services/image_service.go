package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	appconfig "gearreport/internal/config"
	"gearreport/internal/observability"
	contextutils "gearreport/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageUpload is one photo to store, already read from the multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// ImageServiceInterface defines photo storage operations.
type ImageServiceInterface interface {
	UploadImages(ctx context.Context, uploads []ImageUpload) ([]string, error)
}

// s3PutAPI is the slice of the S3 client the service uses.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores submission photos in an S3-compatible bucket and
// returns their public URLs.
type ImageService struct {
	client        s3PutAPI
	bucket        string
	publicBaseURL string
	logger        *observability.Logger
}

// NewImageService creates an ImageService from storage configuration.
// A non-empty endpoint switches the client to an S3-compatible store
// such as MinIO.
func NewImageService(ctx context.Context, cfg *appconfig.StorageConfig, logger *observability.Logger) (*ImageService, error) {
	if logger == nil {
		panic("NewImageService: logger is nil")
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &ImageService{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL(cfg),
		logger:        logger,
	}, nil
}

// NewImageServiceWithClient creates an ImageService with an injected client, for tests.
func NewImageServiceWithClient(client s3PutAPI, bucket, baseURL string, logger *observability.Logger) *ImageService {
	return &ImageService{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(baseURL, "/"),
		logger:        logger,
	}
}

func publicBaseURL(cfg *appconfig.StorageConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// UploadImages stores each photo under a fresh object key and returns the
// public URLs in input order. Any failed upload aborts the whole batch so a
// submission never references half its photos.
func (s *ImageService) UploadImages(ctx context.Context, uploads []ImageUpload) (result0 []string, err error) {
	ctx, span := observability.TraceStorageFunction(ctx, "upload_images",
		observability.AttributeImageCount(len(uploads)))
	defer observability.FinishSpan(span, &err)

	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		key := objectKey(upload.Filename)

		putCtx, cancel := context.WithTimeout(ctx, appconfig.UploadTimeout)
		_, err = s.client.PutObject(putCtx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          upload.Body,
			ContentType:   aws.String(upload.ContentType),
			ContentLength: aws.Int64(upload.Size),
		})
		cancel()
		if err != nil {
			span.SetAttributes(observability.AttributeObjectKey(key))
			s.logger.Error(ctx, "Image upload failed", err, map[string]interface{}{
				"key":    key,
				"bucket": s.bucket,
			})
			return nil, contextutils.WrapErrorf(contextutils.ErrUploadFailed, "failed to store %s", upload.Filename)
		}

		urls = append(urls, s.publicBaseURL+"/"+key)
	}

	return urls, nil
}

// objectKey builds a collision-free key preserving the original extension.
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "submissions/" + uuid.NewString() + ext
}
