// Package rediscache caches public course list pages in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/course"
)

// pagesKey is a hash of page-key -> JSON page, so that one DEL drops every cached page.
const pagesKey = "courseware:courses:pages"

type CoursePageCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ course.PageCache = (*CoursePageCache)(nil)

// NewClient connects to redis and checks the connection.
func NewClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

func NewCoursePageCache(rdb *redis.Client, ttl time.Duration, logger core.Logger) *CoursePageCache {
	return &CoursePageCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CoursePageCache) Get(ctx context.Context, key string) (course.Page, bool) {
	raw, err := c.rdb.HGet(ctx, pagesKey, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("course page cache: get", err, map[string]interface{}{"key": key})
		}
		return course.Page{}, false
	}

	var p course.Page
	if err = json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("course page cache: decode", err, map[string]interface{}{"key": key})
		return course.Page{}, false
	}
	p.Offset = (p.Page - 1) * p.PageSize
	return p, true
}

func (c *CoursePageCache) Set(ctx context.Context, key string, p course.Page) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("course page cache: encode", err)
		return
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, pagesKey, key, raw)
	if c.ttl > 0 {
		pipe.Expire(ctx, pagesKey, c.ttl)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		c.logger.Warn("course page cache: set", err, map[string]interface{}{"key": key})
	}
}

func (c *CoursePageCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, pagesKey).Err(); err != nil {
		c.logger.Error("course page cache: invalidate", err)
	}
}
