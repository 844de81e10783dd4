// Package accountsync mirrors an account's state to a server-side snapshot
// so it follows the user between devices.
package accountsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/flavr/backend/config"
	"github.com/pageza/flavr/backend/internal/models"
)

// ErrNotFound is returned by Pull when the account has no remote snapshot.
var ErrNotFound = errors.New("no remote snapshot")

// SnapshotStore holds one snapshot per account.
type SnapshotStore interface {
	Pull(ctx context.Context, account string) (*models.Snapshot, error)
	Push(ctx context.Context, account string, snap models.Snapshot) error
}

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps snapshots as JSON objects under snapshots/<account>.json.
type S3Store struct {
	client ObjectAPI
	bucket string
}

var _ SnapshotStore = (*S3Store)(nil)

// NewS3Store creates an S3Store from the shared S3 configuration
func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{client: cfg.Client, bucket: cfg.BucketName}
}

// NewS3StoreWithClient creates an S3Store on any ObjectAPI (for testing).
func NewS3StoreWithClient(client ObjectAPI, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func objectKey(account string) string {
	return fmt.Sprintf("snapshots/%s.json", account)
}

func (s *S3Store) Pull(ctx context.Context, account string) (*models.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(account)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func (s *S3Store) Push(ctx context.Context, account string, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(account)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}

// GormStore keeps snapshots in the remote_snapshots table.
type GormStore struct {
	db *gorm.DB
}

var _ SnapshotStore = (*GormStore)(nil)

// NewGormStore creates a GormStore. The table must already be migrated.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Pull(ctx context.Context, account string) (*models.Snapshot, error) {
	var row models.RemoteSnapshot
	err := g.db.WithContext(ctx).First(&row, "account = ?", account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(row.Data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func (g *GormStore) Push(ctx context.Context, account string, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	row := models.RemoteSnapshot{Account: account, Data: data, UpdatedAt: time.Now().UTC()}
	err = g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
