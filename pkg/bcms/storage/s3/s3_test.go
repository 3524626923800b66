package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestS3Backend_BasicConfiguration tests the configuration and creation of S3 backend
func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		config := Config{
			Region: "us-east-1",
			Bucket: "",
		}
		_, err := New(config)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		config := Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		backend, err := New(config)
		require.NoError(t, err)
		if b, ok := backend.(*Backend); ok {
			assert.Equal(t, "us-east-1", b.region)
		}
	})

	t.Run("EndpointWithoutSchemeUsesSSLFlag", func(t *testing.T) {
		config := Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			Endpoint:        "localhost:9000",
			UseSSL:          false,
		}
		backend, err := New(config)
		require.NoError(t, err)
		if b, ok := backend.(*Backend); ok {
			assert.Equal(t, "http://localhost:9000", b.endpoint)
		}

		config.UseSSL = true
		backend, err = New(config)
		require.NoError(t, err)
		if b, ok := backend.(*Backend); ok {
			assert.Equal(t, "https://localhost:9000", b.endpoint)
		}
	})
}

// TestS3Backend_MinIOConfiguration tests MinIO-specific configuration
func TestS3Backend_MinIOConfiguration(t *testing.T) {
	t.Run("CustomEndpoint", func(t *testing.T) {
		config := Config{
			Bucket:          "test-bucket",
			Region:          "us-east-1",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			Endpoint:        "http://localhost:9000",
			UseSSL:          false,
			UsePathStyle:    true,
		}
		backend, err := New(config)
		require.NoError(t, err)
		if b, ok := backend.(*Backend); ok {
			assert.Equal(t, "http://localhost:9000", b.endpoint)
			assert.True(t, b.usePathStyle)
		}
	})
}

// TestS3Backend_ObjectURLs pins down the URL forms the backend produces.
// No network involved; URL generation is pure string work.
func TestS3Backend_ObjectURLs(t *testing.T) {
	key := "posts/2025/01/image.png"

	t.Run("PublicBaseURLWins", func(t *testing.T) {
		b := &Backend{
			bucket:        "media",
			region:        "us-east-1",
			endpoint:      "http://localhost:9000",
			usePathStyle:  true,
			publicBaseURL: "https://cdn.example.com",
		}
		url, err := b.URL(key)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/"+key, url)
	})

	t.Run("PathStyleEndpoint", func(t *testing.T) {
		b := &Backend{
			bucket:       "media",
			region:       "us-east-1",
			endpoint:     "http://localhost:9000",
			usePathStyle: true,
		}
		url, err := b.URL(key)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/media/"+key, url)
	})

	t.Run("VirtualHostEndpoint", func(t *testing.T) {
		b := &Backend{
			bucket:   "media",
			region:   "us-east-1",
			endpoint: "https://storage.example.com",
		}
		url, err := b.URL(key)
		require.NoError(t, err)
		assert.Equal(t, "https://media.storage.example.com/"+key, url)
	})

	t.Run("StandardAWSForm", func(t *testing.T) {
		b := &Backend{
			bucket: "media",
			region: "eu-west-1",
		}
		url, err := b.URL(key)
		require.NoError(t, err)
		assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/"+key, url)
	})
}

// TestS3Backend_Integration tests actual S3/MinIO operations
// This test requires a running MinIO instance or S3 credentials
func TestS3Backend_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	endpoint := os.Getenv("AWS_S3_ENDPOINT")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	bucket := os.Getenv("AWS_S3_BUCKET")

	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		t.Skip("Skipping integration test: S3/MinIO environment variables not set")
	}

	config := Config{
		Bucket:                 bucket,
		Region:                 "us-east-1",
		AccessKeyID:            accessKey,
		SecretAccessKey:        secretKey,
		Endpoint:               endpoint,
		UseSSL:                 false,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	}

	backend, err := New(config)
	require.NoError(t, err, "Failed to create S3 backend")
	require.NotNil(t, backend)

	ctx := context.Background()
	objectKey := fmt.Sprintf("test/integration/%d/image.png", time.Now().Unix())
	testData := []byte("Hello from S3 integration test!")

	t.Run("UploadAndDownload", func(t *testing.T) {
		err := backend.Upload(ctx, objectKey, bytes.NewReader(testData), "image/png")
		require.NoError(t, err, "Failed to upload object")

		reader, err := backend.Download(ctx, objectKey)
		require.NoError(t, err, "Failed to download object")
		defer reader.Close()

		downloadedData, err := io.ReadAll(reader)
		require.NoError(t, err, "Failed to read downloaded data")
		assert.Equal(t, testData, downloadedData, "Downloaded data doesn't match uploaded data")
	})

	t.Run("URL", func(t *testing.T) {
		url, err := backend.URL(objectKey)
		require.NoError(t, err)
		assert.Contains(t, url, bucket, "URL should contain bucket name")
	})

	t.Run("Delete", func(t *testing.T) {
		err := backend.Delete(ctx, objectKey)
		require.NoError(t, err, "Failed to delete object")

		_, err = backend.Download(ctx, objectKey)
		require.Error(t, err, "Should error when downloading deleted object")
	})

	t.Run("DeleteNonExistent", func(t *testing.T) {
		// S3 Delete is idempotent, so this typically doesn't error
		err := backend.Delete(ctx, "nonexistent/object.png")
		assert.NoError(t, err, "Delete of non-existent object should not error")
	})
}
