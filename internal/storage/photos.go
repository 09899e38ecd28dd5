// Package storage keeps recipe photos in an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PhotoStore saves, links and removes recipe photos.
type PhotoStore interface {
	Put(ctx context.Context, recipeID uuid.UUID, filename, contentType string, body io.Reader) (string, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3API is the part of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3PhotoStore implements PhotoStore on an S3 bucket. Objects stay private;
// pages link to them with short-lived presigned URLs.
type S3PhotoStore struct {
	client     S3API
	presign    *s3.PresignClient
	bucket     string
	presignTTL time.Duration
}

func NewS3PhotoStore(client *s3.Client, bucket string, presignTTL time.Duration) *S3PhotoStore {
	return newS3PhotoStore(client, s3.NewPresignClient(client), bucket, presignTTL)
}

func newS3PhotoStore(client S3API, presign *s3.PresignClient, bucket string, presignTTL time.Duration) *S3PhotoStore {
	return &S3PhotoStore{
		client:     client,
		presign:    presign,
		bucket:     bucket,
		presignTTL: presignTTL,
	}
}

// Put uploads body under recipes/<recipe id>/<random>.<ext> and returns the key.
func (s *S3PhotoStore) Put(ctx context.Context, recipeID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	key := ObjectKey(recipeID, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return key, nil
}

// URL returns a presigned GET URL for key.
func (s *S3PhotoStore) URL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign photo: %w", err)
	}
	return req.URL, nil
}

func (s *S3PhotoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// ObjectKey builds the object key for a new photo of recipeID.
func ObjectKey(recipeID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("recipes/%s/%s%s", recipeID, uuid.NewString(), ext)
}
