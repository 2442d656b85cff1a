package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"taskmanager-api/configs"
	"taskmanager-api/pkg/logger"
)

func mongoOptions(cfg configs.Config) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.MongoURL).
		SetMaxPoolSize(cfg.MongoMaxPoolSize).
		SetMinPoolSize(cfg.MongoMinPoolSize).
		SetMaxConnecting(cfg.MongoMaxConnecting).
		SetServerSelectionTimeout(cfg.MongoServerSelectionTimeout).
		SetConnectTimeout(cfg.MongoConnectTimeout).
		SetSocketTimeout(cfg.MongoSocketTimeout).
		SetMaxConnIdleTime(cfg.MongoMaxIdleTime).
		SetRetryWrites(true).
		SetRetryReads(true)
	if len(cfg.MongoCompressors) > 0 {
		opts.SetCompressors(cfg.MongoCompressors)
	}
	return opts
}

// ConnectMongo opens the shared client and verifies it with a ping. The
// caller owns the client and must Disconnect it.
func ConnectMongo(ctx context.Context, cfg configs.Config) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, mongoOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.SystemLogger.Info("Connected to MongoDB",
		zap.String("database", cfg.MongoDB),
		zap.Uint64("max_pool_size", cfg.MongoMaxPoolSize),
	)
	return client, nil
}
