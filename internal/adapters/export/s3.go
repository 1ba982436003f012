package export

import (
	"bytes"
	"context"
	"io"
	"log"

	"github.com/minio/minio-go/v7"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

// S3Client is the slice of the minio client the exporter needs; narrow so
// tests can fake it.
type S3Client interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Exporter uploads the feature CSV to an object store key.
type S3Exporter struct {
	Client S3Client
	Bucket string
	Key    string
}

func NewS3Exporter(cli S3Client, bucket, key string) *S3Exporter {
	return &S3Exporter{Client: cli, Bucket: bucket, Key: key}
}

func (e *S3Exporter) Export(ctx context.Context, rows []models.FeatureRow) error {
	log.Printf("[EXPORT][S3][START] bucket=%q key=%q rows=%d", e.Bucket, e.Key, len(rows))

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return err
	}

	info, err := e.Client.PutObject(ctx, e.Bucket, e.Key, &buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		log.Printf("[EXPORT][S3][ERR] put: %v", err)
		return err
	}

	log.Printf("[EXPORT][S3][DONE] bucket=%q key=%q size=%d etag=%q", e.Bucket, e.Key, info.Size, info.ETag)
	return nil
}
