package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
)

// BucketConfig locates CSV exports in an S3-compatible bucket such as R2.
type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// BucketSource reads feeds from "<prefix><Tab>.csv" objects.
type BucketSource struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewBucketSource constructs the source.
func NewBucketSource(cfg BucketConfig, logger *slog.Logger) (*BucketSource, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(cfg.Endpoint), "https"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init bucket client: %w", err)
	}
	return &BucketSource{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger.With("component", "sheets.bucket"),
	}, nil
}

// Fetch implements feedsync.Source.
func (s *BucketSource) Fetch(ctx context.Context, feed feedsync.Feed) ([][]string, error) {
	t, err := tabFor(feed)
	if err != nil {
		return nil, err
	}
	key := s.prefix + t.name + ".csv"
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()
	rows, err := readCSV(obj, t, key)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("feed object read", "key", key, "rows", len(rows))
	return rows, nil
}

// sanitizeEndpoint strips the scheme and path; minio.New wants host[:port].
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

var _ feedsync.Source = (*BucketSource)(nil)
