package clients

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientInterface defines the interface for S3 operations
type S3ClientInterface interface {
	UploadObject(ctx context.Context, key string, body io.Reader, metadata map[string]string) (*UploadResult, error)
}

// S3UploaderInterface is the subset of manager.Uploader used by S3Client
type S3UploaderInterface interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// UploadResult describes a stored object
type UploadResult struct {
	Bucket    string
	Key       string
	Location  string
	VersionID string
	Bytes     int64
}

// S3Client wraps the S3 upload manager for a single bucket
type S3Client struct {
	uploader S3UploaderInterface
	bucket   string
}

// NewS3Client creates a new S3 client instance
func NewS3Client(cfg aws.Config, bucket string) S3ClientInterface {
	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3Client{
		uploader: manager.NewUploader(svc),
		bucket:   bucket,
	}
}

// NewS3ClientWithUploader creates an S3 client around an existing uploader
func NewS3ClientWithUploader(uploader S3UploaderInterface, bucket string) S3ClientInterface {
	return &S3Client{uploader: uploader, bucket: bucket}
}

// UploadObject streams body to the bucket under key. The upload manager switches to a
// multipart upload for large bodies, so the content is never fully buffered.
// Uploading to an existing key overwrites it.
func (client *S3Client) UploadObject(ctx context.Context, key string, body io.Reader, metadata map[string]string) (*UploadResult, error) {
	counter := &countingReader{reader: body}

	output, err := client.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(client.bucket),
		Key:      aws.String(key),
		Body:     counter,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Bucket:    client.bucket,
		Key:       key,
		Location:  output.Location,
		VersionID: aws.ToString(output.VersionID),
		Bytes:     counter.count,
	}, nil
}

type countingReader struct {
	reader io.Reader
	count  int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.count += int64(n)
	return n, err
}
