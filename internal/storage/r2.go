// Package storage wraps Cloudflare R2 (S3-compatible) access for awareness
// post media. Clients upload directly through presigned URLs so media bytes
// never pass through the API server.
package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = 6 * time.Hour
)

// mediaContentTypes maps the content types accepted for awareness media to
// the object key extension used for them.
var mediaContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
}

// R2Storage talks to an R2 bucket through the AWS SDK.
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewR2Storage(accountID, accessKeyID, secretAccessKey, bucket string) (*R2Storage, error) {
	if accountID == "" || accessKeyID == "" || secretAccessKey == "" || bucket == "" {
		return nil, fmt.Errorf("R2 configuration incomplete")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	creds := credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")

	client := s3.New(s3.Options{
		Region:       "auto",
		Credentials:  creds,
		BaseEndpoint: aws.String(endpoint),
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

// MediaUpload is a presigned upload slot for one media object.
type MediaUpload struct {
	ObjectKey string `json:"object_key"`
	UploadURL string `json:"upload_url"`
	ExpiresIn int    `json:"expires_in"`
}

// NewMediaUpload allocates an object key under the uploader's prefix and
// returns a presigned PUT URL for it. contentType must be one of the
// accepted media types.
func (r *R2Storage) NewMediaUpload(ctx context.Context, uploaderID uuid.UUID, contentType string) (*MediaUpload, error) {
	ext, ok := mediaContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported media type %q", contentType)
	}

	key := path.Join("awareness", uploaderID.String(), uuid.NewString()+ext)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	request, err := r.presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &MediaUpload{
		ObjectKey: key,
		UploadURL: request.URL,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

// MediaURL returns a presigned GET URL for a stored object key.
func (r *R2Storage) MediaURL(ctx context.Context, objectKey string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey),
	}

	request, err := r.presigner.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = downloadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return request.URL, nil
}

// DeleteMedia removes a stored object, e.g. when its post is rejected.
func (r *R2Storage) DeleteMedia(ctx context.Context, objectKey string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey),
	}

	if _, err := r.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
