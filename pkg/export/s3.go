package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/disintegration/imaging"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// UploadTimeout bounds a single object upload
const UploadTimeout = 30 * time.Second

// S3Exporter uploads images to an S3-compatible bucket
type S3Exporter struct {
	client s3iface.S3API
	bucket string
	prefix string
	logger core.Logger
}

// NewS3Exporter creates an exporter from the S3 settings of cfg. Static
// credentials are used when both keys are set; otherwise the SDK's default
// chain applies.
func NewS3Exporter(cfg config.Render, logger core.Logger) (*S3Exporter, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("%w: S3 bucket is required", config.ErrInvalid)
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3ExporterWithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

// NewS3ExporterWithClient creates an exporter around an existing client
func NewS3ExporterWithClient(client s3iface.S3API, bucket, prefix string, logger core.Logger) *S3Exporter {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Exporter{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key used for name
func (se *S3Exporter) Key(name string) string {
	if se.prefix == "" {
		return name
	}
	return path.Join(se.prefix, name)
}

// Export encodes img by the extension of name and uploads it
func (se *S3Exporter) Export(ctx context.Context, img image.Image, name string) error {
	if img == nil {
		return ErrNoImage
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, formatFor(name)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := se.Key(name)
	size := int64(buf.Len())
	_, err := se.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(se.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	se.logger.Printf("Uploaded %s to s3://%s (%d bytes)\n", key, se.bucket, size)
	return nil
}
