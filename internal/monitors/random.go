package monitors

import (
	"context"
	"math/rand"

	"github.com/monocle-dev/visawatch/internal/types"
)

const DefaultAvailabilityRate = 0.1

// RandomProber stands in for a real embassy check: it reports slots with a
// fixed probability.
type RandomProber struct {
	Rate  float64        // probability of reporting availability
	Float func() float64 // random source in [0, 1)
}

func NewRandomProber(rate float64) *RandomProber {
	if rate < 0 || rate > 1 {
		rate = DefaultAvailabilityRate
	}
	return &RandomProber{Rate: rate, Float: rand.Float64}
}

func (p *RandomProber) Probe(ctx context.Context, _ types.ProbeRequest) (Availability, error) {
	if err := ctx.Err(); err != nil {
		return Availability{}, err
	}

	if p.Float() < p.Rate {
		return Availability{Available: true, Message: MessageAvailable}, nil
	}

	return Availability{Available: false, Message: MessageNoAppointments}, nil
}
