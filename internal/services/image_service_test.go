package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gearreport/internal/config"
	"gearreport/internal/observability"
	contextutils "gearreport/internal/utils"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3Client struct {
	keys    []string
	failOn  int
	failErr error
}

func (f *fakeS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failErr != nil && len(f.keys) == f.failOn {
		return nil, f.failErr
	}
	f.keys = append(f.keys, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

func testImageService(client s3PutAPI) *ImageService {
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return NewImageServiceWithClient(client, "gear-photos", "https://cdn.example.com/gear-photos/", logger)
}

func TestUploadImages_Success(t *testing.T) {
	client := &fakeS3Client{}
	svc := testImageService(client)

	uploads := []ImageUpload{
		{Filename: "first.JPG", ContentType: "image/jpeg", Body: strings.NewReader("a"), Size: 1},
		{Filename: "second.png", ContentType: "image/png", Body: strings.NewReader("b"), Size: 1},
	}

	urls, err := svc.UploadImages(context.Background(), uploads)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.Len(t, client.keys, 2)

	for i, url := range urls {
		assert.Equal(t, "https://cdn.example.com/gear-photos/"+client.keys[i], url)
		assert.True(t, strings.HasPrefix(client.keys[i], "submissions/"))
	}

	// Extensions are preserved and lowercased
	assert.True(t, strings.HasSuffix(client.keys[0], ".jpg"))
	assert.True(t, strings.HasSuffix(client.keys[1], ".png"))
	assert.NotEqual(t, client.keys[0], client.keys[1])
}

func TestUploadImages_FailureAbortsBatch(t *testing.T) {
	client := &fakeS3Client{failOn: 1, failErr: errors.New("connection reset")}
	svc := testImageService(client)

	uploads := []ImageUpload{
		{Filename: "first.jpg", ContentType: "image/jpeg", Body: strings.NewReader("a"), Size: 1},
		{Filename: "second.jpg", ContentType: "image/jpeg", Body: strings.NewReader("b"), Size: 1},
		{Filename: "third.jpg", ContentType: "image/jpeg", Body: strings.NewReader("c"), Size: 1},
	}

	urls, err := svc.UploadImages(context.Background(), uploads)
	require.Error(t, err)
	assert.Nil(t, urls)
	assert.True(t, contextutils.IsError(err, contextutils.ErrUploadFailed))
	assert.Contains(t, err.Error(), "second.jpg")
	// Nothing after the failed photo was attempted
	assert.Len(t, client.keys, 1)
}

func TestUploadImages_Empty(t *testing.T) {
	client := &fakeS3Client{}
	svc := testImageService(client)

	urls, err := svc.UploadImages(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
}
