package servers

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"focus-hub/pkg/resources"
)

// baseServer keeps the process alive and releases the shared resources
// (connection pool and friends) when it is stopped.
type baseServer struct {
	name         string
	closeOnce    sync.Once
	closeChannel chan struct{}
	closables    []resources.Closable
}

func NewBaseServer(name string, closables ...resources.Closable) Server {
	return &baseServer{
		name:         name,
		closeChannel: make(chan struct{}),
		closables:    closables,
	}
}

func (server *baseServer) Name() string {
	return server.name
}

func (server *baseServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	select {
	case <-server.closeChannel:
	case <-ctx.Done():
	}

	return nil
}

func (server *baseServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	server.closeOnce.Do(func() {
		for _, closable := range server.closables {
			closable.Close()
		}

		close(server.closeChannel)
	})

	return nil
}
