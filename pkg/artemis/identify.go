package artemis

import (
	"context"
	"time"

	"github.com/artemis-hunt/artemis-go/internal/metrics"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// instrumentedIdentifier records the outcome and latency of every
// identification attempt.
type instrumentedIdentifier struct {
	next    session.Identifier
	metrics *metrics.Manager
}

func (i instrumentedIdentifier) Identify(ctx context.Context, sig session.CombatSignature, loc event.Location, lootHints []string) (*session.Identification, bool) {
	start := time.Now()
	id, ok := i.next.Identify(ctx, sig, loc, lootHints)
	i.metrics.ObserveIdentify(ok, time.Since(start))
	return id, ok
}
