package storage

import (
	"context"
	"testing"

	"alcyxob/liftlog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "https://s3.example.com", endpointURL("s3.example.com", true))
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000", true))
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPresignedDownloadURL(t *testing.T) {
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "exports",
	})
	require.NoError(t, err)

	url, err := fs.GeneratePresignedDownloadURL(context.Background(), "u1/workouts.csv", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/exports/u1/workouts.csv")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
