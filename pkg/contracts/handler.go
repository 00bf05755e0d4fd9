package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background loop that runs until its context is cancelled.
type Worker interface {
	Start(ctx context.Context) error
	Close() error
}
