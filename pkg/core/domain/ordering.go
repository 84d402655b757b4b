package domain

import "fmt"

// AnomalyType tags a Diagnostics finding
type AnomalyType int

const (
	AnomalyDuplicate AnomalyType = iota + 1
	AnomalyGap
	AnomalyNegative
	AnomalyOversized
)

func (t AnomalyType) String() string {
	switch t {
	case AnomalyDuplicate:
		return "duplicate"
	case AnomalyGap:
		return "gap"
	case AnomalyNegative:
		return "negative"
	case AnomalyOversized:
		return "oversized"
	}
	return fmt.Sprintf("anomaly(%d)", int(t))
}

func (t AnomalyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *AnomalyType) UnmarshalText(text []byte) error {
	for _, c := range []AnomalyType{AnomalyDuplicate, AnomalyGap, AnomalyNegative, AnomalyOversized} {
		if c.String() == string(text) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown anomaly type %q", text)
}

// Severity returns the fixed severity of the anomaly type.
func (t AnomalyType) Severity() Severity {
	switch t {
	case AnomalyDuplicate, AnomalyNegative:
		return SeverityHigh
	case AnomalyGap:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for _, c := range []Severity{SeverityLow, SeverityMedium, SeverityHigh} {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Anomaly is a detected violation of the ordering invariants. Values holds
// the offending order values (duplicated, missing, negative or oversized).
type Anomaly struct {
	Type     AnomalyType `json:"type"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
	Values   []int       `json:"values"`
}

// ItemSummary is the compact per-link listing in a report
type ItemSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// DiagnosticReport is the read-only audit of one owner's sequence
type DiagnosticReport struct {
	Success    bool          `json:"success"`
	OwnerID    string        `json:"owner_id"`
	TotalItems int           `json:"total_items"`
	MinOrder   int           `json:"min_order"`
	MaxOrder   int           `json:"max_order"`
	Consistent bool          `json:"consistent"`
	Anomalies  []Anomaly     `json:"anomalies"`
	Items      []ItemSummary `json:"items"`
}

// RepairResult is returned by a successful Repair. Changed counts links whose
// order value differed from its final position.
type RepairResult struct {
	Success   bool `json:"success"`
	ItemCount int  `json:"item_count"`
	Changed   int  `json:"changed"`
}
