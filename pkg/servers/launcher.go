package servers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"focus-hub/pkg/resources"
)

// Launch runs server in the background. A failure while running is sent to
// errChan; the returned StopFn stops the server within the given timeout.
func Launch(ctx context.Context, server Server, errChan chan<- error) resources.StopFn {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- ErrServerPanicked(server.Name(), r)
			}
		}()

		err := server.Run(ctx)
		if err != nil {
			errChan <- err
		}
	}()

	return func(ctx context.Context, timeout time.Duration) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := server.Stop(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("stage", "shut down").Str("component", server.Name()).Msg("unable to stop server")
		}
	}
}
