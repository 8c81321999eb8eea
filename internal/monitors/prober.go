package monitors

import (
	"context"

	"github.com/monocle-dev/visawatch/internal/types"
)

// Availability is what a single look at the embassy booking page found.
type Availability struct {
	Available bool
	Message   string
}

const (
	MessageNoAppointments = "No Appointments Available"
	MessageAvailable      = "Appointments Available"
)

// Prober decides whether appointment slots are open. Implementations must
// honour ctx cancellation.
type Prober interface {
	Probe(ctx context.Context, req types.ProbeRequest) (Availability, error)
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func(ctx context.Context, req types.ProbeRequest) (Availability, error)

func (f ProberFunc) Probe(ctx context.Context, req types.ProbeRequest) (Availability, error) {
	return f(ctx, req)
}
