package snapshots

import (
	"context"
	"encoding/json"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"city-weather/internal/models"
	"city-weather/internal/storage"
	"city-weather/pkg/apperr"
	"city-weather/pkg/logger"
	"city-weather/pkg/lookup"
)

const (
	DefaultBucket = "weather-data"
	contentType   = "application/json"
)

// Store keeps weather snapshots as JSON objects in a single bucket.
type Store struct {
	objects ObjectClient
	bucket  string
	region  string
	l       *logger.Logger
}

func NewStore(objects ObjectClient, bucket, region string, l *logger.Logger) *Store {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Store{
		objects: objects,
		bucket:  bucket,
		region:  region,
		l:       l.With(map[string]any{"component": "snapshots", "bucket": bucket}),
	}
}

// Put writes the snapshot under key. A missing bucket is created once and
// the write retried once.
func (s *Store) Put(ctx context.Context, key string, snapshot models.WeatherSnapshot) error {
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return apperr.NewInternal("encode snapshot", err)
	}

	put := func(ctx context.Context) error {
		if err := s.objects.PutObject(ctx, s.bucket, key, body, contentType); err != nil {
			return s.classify(err, "put "+key)
		}
		return nil
	}

	if err := storage.CreateThenRetry(ctx, put, s.EnsureBucket); err != nil {
		return err
	}

	s.l.Debug("snapshot stored", map[string]any{"key": key})
	return nil
}

// Get reads a snapshot. A missing bucket or key is a Miss; an object that
// does not decode is Failed with lookup.ErrCorrupt.
func (s *Store) Get(ctx context.Context, key string) lookup.Result[models.WeatherSnapshot] {
	body, err := s.objects.GetObject(ctx, s.bucket, key)
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return lookup.Miss[models.WeatherSnapshot]()
		}
		return lookup.Fail[models.WeatherSnapshot](errors.Wrapf(err, "get %s", key))
	}

	var snapshot models.WeatherSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return lookup.Fail[models.WeatherSnapshot](errors.Wrapf(lookup.ErrCorrupt, "decode %s: %s", key, err.Error()))
	}
	return lookup.Hit(snapshot)
}

// EnsureBucket creates the bucket unless it already exists.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.objects.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", s.bucket)
	}
	if exists {
		return nil
	}

	if err := s.objects.MakeBucket(ctx, s.bucket, s.region); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return errors.Wrapf(err, "create bucket %s", s.bucket)
	}

	s.l.Info("bucket created")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.objects.BucketExists(ctx, s.bucket)
	return errors.Wrap(err, "minio ping")
}

func (s *Store) classify(err error, op string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
		return apperr.NewResourceMissing("bucket "+s.bucket, err)
	}
	return errors.Wrap(err, op)
}
