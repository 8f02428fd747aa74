package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewBookStorage connects to the storage selected by the configured driver and
// provides the book storage on top of it. The connection is verified before
// returning so any failure here must abort the startup.
func NewBookStorage(ctx context.Context, logger *zap.Logger, config *Config) (BookStorage, error) {
	switch config.Store.Driver {
	case MongoDBDriver:
		db, err := GetMongoDatabase(ctx, &config.MongoDB)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to mongodb",
			zap.String("mongodb.database", config.MongoDB.Database),
			zap.String("mongodb.collection", config.MongoDB.Collection),
		)
		return NewMongoBookStorage(logger, db, config.MongoDB.Collection), nil

	case BoltDBDriver:
		client, err := GetBoltDBClient(&config.BoltDB)
		if err != nil {
			return nil, err
		}
		logger.Info("opened boltdb database",
			zap.String("boltdb.filepath", config.BoltDB.FilePath),
			zap.String("boltdb.bucket", config.BoltDB.BucketName),
		)
		return NewBoltBookStorage(logger, &config.BoltDB, client), nil

	case RedisDriver:
		client, err := GetRedisClient(ctx, &config.Redis)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to redis",
			zap.String("redis.host", config.Redis.Host),
			zap.String("redis.port", config.Redis.Port),
		)
		return NewRedisBookStorage(logger, client), nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", config.Store.Driver)
}
