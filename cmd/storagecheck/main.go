package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/config"
)

// storagecheck exercises the blob storage backend the server is
// configured with. Point it at the same .env as cmd/server and run
// "check" before deploying to confirm credentials, bucket and
// permissions actually work.

func main() {
	command := flag.String("command", "check", "Command to execute: check, upload, download, delete, url, help")
	objectKey := flag.String("key", "", "Object key for upload/download/delete/url")
	filePath := flag.String("file", "", "File path for upload/download")
	flag.Parse()

	if strings.ToLower(*command) == "help" {
		printHelp()
		return
	}

	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Printf("Storage backend: %s\n", cfg.StorageBackend)
	if cfg.StorageBackend == "s3" {
		fmt.Printf("  Bucket:   %s\n", cfg.S3Bucket)
		fmt.Printf("  Region:   %s\n", cfg.S3Region)
		fmt.Printf("  Endpoint: %s\n", cfg.S3Endpoint)
	}
	fmt.Println()

	store, err := cfg.BuildBlobStore()
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}

	ctx := context.Background()

	switch strings.ToLower(*command) {
	case "check":
		runCheck(ctx, store)

	case "upload":
		if *objectKey == "" || *filePath == "" {
			log.Fatal("Object key and file path are required for upload")
		}

		file, err := os.Open(*filePath)
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer file.Close()

		fmt.Printf("Uploading %s to %s...\n", *filePath, *objectKey)
		startTime := time.Now()
		err = store.Upload(ctx, *objectKey, file, "application/octet-stream")
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		fmt.Printf("Upload successful (took %v)\n", duration)

	case "download":
		if *objectKey == "" || *filePath == "" {
			log.Fatal("Object key and file path are required for download")
		}

		fmt.Printf("Downloading %s to %s...\n", *objectKey, *filePath)
		startTime := time.Now()
		reader, err := store.Download(ctx, *objectKey)
		if err != nil {
			log.Fatalf("Download failed: %v", err)
		}
		defer reader.Close()

		file, err := os.Create(*filePath)
		if err != nil {
			log.Fatalf("Failed to create file: %v", err)
		}
		defer file.Close()

		bytesWritten, err := io.Copy(file, reader)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Failed to write file: %v", err)
		}
		fmt.Printf("Download successful: %d bytes (took %v)\n", bytesWritten, duration)

	case "delete":
		if *objectKey == "" {
			log.Fatal("Object key is required for delete")
		}

		fmt.Printf("Deleting %s...\n", *objectKey)
		startTime := time.Now()
		err := store.Delete(ctx, *objectKey)
		duration := time.Since(startTime)
		if err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Printf("Delete successful (took %v)\n", duration)

	case "url":
		if *objectKey == "" {
			log.Fatal("Object key is required for url")
		}

		url, err := store.URL(*objectKey)
		if err != nil {
			log.Fatalf("Failed to resolve URL: %v", err)
		}
		fmt.Printf("Public URL for %s:\n%s\n", *objectKey, url)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

// runCheck uploads a probe object, reads it back, verifies the bytes
// and deletes it again.
func runCheck(ctx context.Context, store bcms.BlobStore) {
	key := fmt.Sprintf("storagecheck/%s.txt", uuid.New().String())
	payload := []byte(fmt.Sprintf("storagecheck probe written at %s", time.Now().UTC().Format(time.RFC3339)))

	fmt.Printf("Probe key: %s\n\n", key)

	startTime := time.Now()
	if err := store.Upload(ctx, key, bytes.NewReader(payload), "text/plain"); err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	fmt.Printf("  upload    ok (%v)\n", time.Since(startTime))

	startTime = time.Now()
	reader, err := store.Download(ctx, key)
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}
	downloaded, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		log.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(downloaded, payload) {
		log.Fatalf("Downloaded bytes do not match uploaded bytes")
	}
	fmt.Printf("  download  ok (%v)\n", time.Since(startTime))

	if url, err := store.URL(key); err == nil {
		fmt.Printf("  url       %s\n", url)
	} else {
		fmt.Printf("  url       not available: %v\n", err)
	}

	startTime = time.Now()
	if err := store.Delete(ctx, key); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	fmt.Printf("  delete    ok (%v)\n", time.Since(startTime))

	fmt.Println("\nStorage backend is working")
}

func printHelp() {
	fmt.Println("Storage backend check tool")
	fmt.Println("\nCommands:")
	fmt.Println("  check     Upload, download, verify and delete a probe object (default)")
	fmt.Println("  upload    Upload a local file")
	fmt.Println("  download  Download an object to a local file")
	fmt.Println("  delete    Delete an object")
	fmt.Println("  url       Print the public URL for an object")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nFlags:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  Round-trip the configured backend:")
	fmt.Println("    storagecheck")
	fmt.Println("\n  Upload a file:")
	fmt.Println("    storagecheck -command upload -key posts/test.png -file ./test.png")
	fmt.Println("\n  Check a MinIO setup (same variables as the server):")
	fmt.Println("    STORAGE_BACKEND=s3 S3_ENDPOINT=http://localhost:9000 \\")
	fmt.Println("    S3_BUCKET=bcms S3_ACCESS_KEY_ID=minioadmin S3_SECRET_ACCESS_KEY=minioadmin \\")
	fmt.Println("    storagecheck")
}
