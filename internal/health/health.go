// Package health 探测数据库与缓存连通性
package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Checker struct {
	db  *gorm.DB
	rdb *redis.Client
}

// New rdb 为 nil 表示未启用缓存，不参与检查
func New(db *gorm.DB, rdb *redis.Client) *Checker {
	return &Checker{db: db, rdb: rdb}
}

func (c *Checker) Check(ctx context.Context) map[string]error {
	out := map[string]error{"database": c.pingDB(ctx)}
	if c.rdb != nil {
		out["redis"] = c.rdb.Ping(ctx).Err()
	}
	return out
}

func (c *Checker) pingDB(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
