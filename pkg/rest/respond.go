package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// StatusOf maps an error of the taxonomy to its HTTP status. Anything outside
// the taxonomy is an internal error.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Abort logs err and writes the error body. Internal errors never leak their
// detail to the caller.
func Abort(gctx *gin.Context, message string, err error) {
	ctx := gctx.Request.Context()

	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Ctx(ctx).Error().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(status, NewError(ErrInternal.Error()))

		return
	}

	log.Ctx(ctx).Warn().Err(err).Int("status", status).Msg(message)
	gctx.AbortWithStatusJSON(status, NewError(message, err))
}
