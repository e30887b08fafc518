package port

import (
	"context"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

type LineCollector interface {
	// CollectLines gathers a fresh set of order lines. current is nil when a
	// new order is being created. An empty result means the user cancelled.
	CollectLines(ctx context.Context, current *domain.OrderRecord) ([]domain.OrderLine, error)
}
