// Package ratelimit paces the scraper's outbound HTTP requests.
//
// TokenBucket grants a fixed number of requests per period and refills in
// one step when the period has elapsed. The fetcher calls Wait before every
// request, so a cancelled context aborts a pending wait:
//
//	limiter := ratelimit.PerMinute(60)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
// PerMinute returns nil for a non-positive rate, meaning unlimited.
package ratelimit
