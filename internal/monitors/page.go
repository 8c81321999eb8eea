package monitors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/monocle-dev/visawatch/internal/types"
)

var ErrMarkerNotFound = errors.New("availability block not found on page")

// DefaultNoSlotMarkers are phrases the booking page shows when nothing is open.
var DefaultNoSlotMarkers = []string{
	"no appointments available",
	"there are no available appointments",
	"no available appointments",
}

// PageProber fetches the booking page and reads the availability block.
type PageProber struct {
	config *types.PageConfig
	client *http.Client
}

func NewPageProber(config *types.PageConfig, timeout time.Duration) *PageProber {
	if len(config.NoSlotMarkers) == 0 {
		config.NoSlotMarkers = DefaultNoSlotMarkers
	}

	if config.ExpectedStatus == 0 {
		config.ExpectedStatus = http.StatusOK
	}

	return &PageProber{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *PageProber) Probe(ctx context.Context, _ types.ProbeRequest) (Availability, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)

	if err != nil {
		return Availability{}, err
	}

	for key, value := range p.config.Headers {
		httpReq.Header.Add(key, value)
	}

	resp, err := p.client.Do(httpReq)

	if err != nil {
		return Availability{}, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != p.config.ExpectedStatus {
		return Availability{}, errors.New("unexpected status code: " + resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)

	if err != nil {
		return Availability{}, fmt.Errorf("failed to parse booking page: %w", err)
	}

	return p.parse(doc)
}

func (p *PageProber) parse(doc *goquery.Document) (Availability, error) {
	block := doc.Find(p.config.Selector)

	if block.Length() == 0 {
		return Availability{}, ErrMarkerNotFound
	}

	text := strings.ToLower(strings.Join(strings.Fields(block.Text()), " "))

	for _, marker := range p.config.NoSlotMarkers {
		if strings.Contains(text, strings.ToLower(marker)) {
			return Availability{Available: false, Message: MessageNoAppointments}, nil
		}
	}

	return Availability{Available: true, Message: MessageAvailable}, nil
}
