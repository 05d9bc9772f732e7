package main

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/course"
	emailsvc "github.com/trezcool/courseware/services/email"
	eventsvc "github.com/trezcool/courseware/services/events"
	gridfsblob "github.com/trezcool/courseware/storage/blob/gridfs"
	memblob "github.com/trezcool/courseware/storage/blob/memory"
	s3blob "github.com/trezcool/courseware/storage/blob/s3"
	rediscache "github.com/trezcool/courseware/storage/cache/redis"
)

func newBlobStore(conf *core.Config, db *mongo.Database) (core.BlobStore, error) {
	switch conf.Blob.Backend {
	case "gridfs", "":
		return gridfsblob.New(db, conf.Blob.Bucket), nil
	case "s3":
		client, err := s3blob.NewClient(context.Background(), conf.S3)
		if err != nil {
			return nil, err
		}
		return s3blob.New(client, conf.S3.Bucket, conf.Blob.MaxUploadSize), nil
	case "memory":
		return memblob.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", conf.Blob.Backend)
	}
}

// newCoursePageCache returns nil (no caching) when redis is not configured.
func newCoursePageCache(conf *core.Config, logger core.Logger) (course.PageCache, error) {
	if conf.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := rediscache.NewClient(context.Background(), conf.Redis)
	if err != nil {
		return nil, err
	}
	return rediscache.NewCoursePageCache(rdb, conf.Redis.TTL, logger), nil
}

func newEventPublisher(conf *core.Config, logger core.Logger) (core.EventPublisher, func() error) {
	if len(conf.Kafka.Brokers) == 0 {
		return eventsvc.NewLogPublisher(logger), func() error { return nil }
	}
	p := eventsvc.NewKafkaPublisher(conf.Kafka)
	return p, p.Close
}

func newMailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}
