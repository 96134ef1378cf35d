package resources

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx, cancel := context.WithTimeout(gctx.Request.Context(), 2*time.Second)
		defer cancel()

		err := db.Ping(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("database ping failed")
			gctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})

			return
		}

		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
