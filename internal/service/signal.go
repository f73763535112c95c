package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

type SignalService struct {
	rdb    *redis.Client
	prefix string
}

// NewSignalService publishes on "<prefix><event type>" channels.
func NewSignalService(redisClient *redis.Client, prefix string) *SignalService {
	return &SignalService{
		rdb:    redisClient,
		prefix: prefix,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event domain.Event) error {
	ctx, span := tracer.Start(ctx, "Signal.Service.Publish")
	defer span.End()

	jsonstr, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = s.rdb.Publish(ctx, s.prefix+channel, jsonstr).Err()
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "redis publish failed")
	}

	return nil
}
