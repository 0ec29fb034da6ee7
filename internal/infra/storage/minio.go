package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Export upload corrected file content, implementasi analysis.Exporter
func (s *Store) Export(ctx context.Context, key string, content []byte) (string, error) {
	key = strings.TrimLeft(key, "/")
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: ContentType(key),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL URL publik (jika bucket public), kalau private harus generate presigned URL
func (s *Store) ObjectURL(key string) string {
	scheme := "http"
	if u := s.client.EndpointURL(); u != nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucketName, key)
}

// Ping dipakai health check
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

// ContentType mimeType sederhana
func ContentType(key string) string {
	switch path.Ext(key) {
	case ".json", ".sarif":
		return "application/json"
	case ".html":
		return "text/html"
	case ".py":
		return "text/x-python"
	case ".js", ".mjs":
		return "text/javascript"
	default:
		return "text/plain; charset=utf-8"
	}
}
