package fetch

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// S3Transport fetches s3://bucket/key URLs from an S3 compatible object store.
type S3Transport struct {
	mu      sync.Mutex
	clients map[domain.S3Settings]*minio.Client
}

// NewS3Transport creates an S3Transport.
func NewS3Transport() *S3Transport {
	return &S3Transport{clients: make(map[domain.S3Settings]*minio.Client)}
}

// Schemes implements ports.Transport.
func (t *S3Transport) Schemes() []string {
	return []string{"s3"}
}

// Get implements ports.Transport.
func (t *S3Transport) Get(ctx context.Context, req ports.FetchRequest, w io.Writer) error {
	bucket, key, err := parseObjectURL(req.URL)
	if err != nil {
		return err
	}

	client, err := t.client(req.S3)
	if err != nil {
		return err
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open object"), "bucket", bucket)
	}
	defer func() {
		_ = obj.Close()
	}()

	if _, err := io.Copy(w, obj); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read object"), "key", key)
	}
	return nil
}

func (t *S3Transport) client(s domain.S3Settings) (*minio.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[s]; ok {
		return c, nil
	}

	// Empty keys sign requests anonymously.
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.Secure,
		Region: s.Region,
	}

	c, err := minio.New(s.Endpoint, opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create object store client"), "endpoint", s.Endpoint)
	}
	t.clients[s] = c
	return c, nil
}

// parseObjectURL splits s3://bucket/key.
func parseObjectURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(domain.ErrInvalidURLTemplate, err.Error()), "url", raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", zerr.With(zerr.Wrap(domain.ErrInvalidURLTemplate, "expected s3://bucket/key"), "url", raw)
	}
	return u.Host, key, nil
}
