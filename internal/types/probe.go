package types

// VisaTypes lists the visa categories the dashboard can monitor.
var VisaTypes = []string{"B1B2", "F1", "H1B", "J1"}

const DefaultVisaType = "B1B2"

type ProbeRequest struct {
	VisaType string `json:"visa_type"`
}

type PageConfig struct {
	URL            string            `json:"url"`
	Selector       string            `json:"selector"`        // CSS selector of the availability block
	NoSlotMarkers  []string          `json:"no_slot_markers"` // Lower-case phrases meaning "nothing available"
	Headers        map[string]string `json:"headers"`
	ExpectedStatus int               `json:"expected_status"`
}
