package handler

import (
	"context"
	"net/http"
	"time"

	"cashdesk/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports connectivity to Postgres and Redis plus the depth of the
// dead-letter lists, so a stuck report pipeline is visible without shell
// access. Returns 503 when either backend is unreachable.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ok := true

		dbStatus := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "down"
			ok = false
		}

		redisStatus := "up"
		deadLetters := gin.H{}
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "down"
			ok = false
		} else {
			for _, q := range []string{worker.QueueReports, worker.QueueEmail} {
				deadLetters[q] = worker.DeadLetterLength(ctx, rdb, q)
			}
		}

		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ok":           ok,
			"db":           dbStatus,
			"redis":        redisStatus,
			"dead_letters": deadLetters,
		})
	}
}
