package imagesource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/sortbot/pkg/config"
)

// ObjectStore - то, что нужно Source от объектного хранилища.
// Используется для мокания в тестах.
type ObjectStore interface {
	ListFiles(ctx context.Context, prefix string) ([]StoredObject, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// S3Client - "тупой" клиент к бакету с изображениями.
type S3Client struct {
	api    *minio.Client
	bucket string
}

var _ ObjectStore = (*S3Client)(nil)

// StoredObject - сырой объект из S3.
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewS3Client создает клиент по конфигу.
func NewS3Client(cfg config.S3Config) (*S3Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Client{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// ListFiles возвращает все объекты по префиксу.
func (c *S3Client) ListFiles(ctx context.Context, prefix string) ([]StoredObject, error) {
	// Нормализация префикса (добавляем слеш, если это "папка")
	if !strings.HasSuffix(prefix, "/") && prefix != "" {
		prefix += "/"
	}

	var objects []StoredObject

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for obj := range c.api.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Пропускаем саму "папку"
		if obj.Key == prefix {
			continue
		}
		objects = append(objects, StoredObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	return objects, nil
}

// DownloadFile скачивает объект целиком в память.
func (c *S3Client) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return buf.Bytes(), nil
}
