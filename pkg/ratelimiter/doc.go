// Package ratelimiter implements a token bucket limiter keyed by string.
//
// Each key owns a bucket holding up to Config.Capacity tokens. Every
// RefillInterval, RefillRate tokens are added back. A request consumes one
// token; once the bucket goes negative the request is denied until enough
// intervals have passed.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       60,
//		RefillRate:     1,
//		RefillInterval: time.Second,
//	})
//	res, err := limiter.Allow(ctx, clientIP)
//	if !res.Allowed() {
//		// reply 429 with res.RetryAfter()
//	}
package ratelimiter
