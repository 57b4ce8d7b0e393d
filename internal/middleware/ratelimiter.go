package middleware

import (
	"net/http"
	"time"

	"agrimarket-api-io/api/pkg/util"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, util.ErrorResponse{
		Error:  "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Millisecond).String(),
		Status: http.StatusTooManyRequests,
	})
}

// RateLimiter allows limit requests per client IP per window. Counters live in
// Redis so every instance shares them; without a client they are kept in
// process memory.
func RateLimiter(rdb *redis.Client, window time.Duration, limit uint) gin.HandlerFunc {
	var store ratelimit.Store
	if rdb != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: rdb,
			Rate:        window,
			Limit:       limit,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  window,
			Limit: limit,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})
}
