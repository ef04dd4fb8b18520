// Package redis connects to Redis with go-redis/v9.
//
//	client, err := redis.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck wraps PING as a readiness probe.
package redis
