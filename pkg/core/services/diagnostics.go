package services

import (
	"fmt"
	"slices"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
)

// DiagnosticsPolicy holds heuristic thresholds. They flag suspicious data
// and carry no correctness weight.
type DiagnosticsPolicy struct {
	// OversizeFactor flags order values above OversizeFactor * N.
	OversizeFactor int
}

func DefaultDiagnosticsPolicy() DiagnosticsPolicy {
	return DiagnosticsPolicy{OversizeFactor: 2}
}

// Analyze checks order values against the contiguous set {0..N-1}.
// Findings come back in a fixed order: duplicates, gaps, negatives, oversized.
func Analyze(links []domain.Link, policy DiagnosticsPolicy) []domain.Anomaly {
	n := len(links)
	factor := policy.OversizeFactor
	if factor <= 0 {
		factor = DefaultDiagnosticsPolicy().OversizeFactor
	}

	counts := make(map[int]int, n)
	for _, l := range links {
		counts[l.Order]++
	}

	var duplicates, missing, negatives, oversized []int
	for v, c := range counts {
		if c > 1 {
			duplicates = append(duplicates, v)
		}
		if v < 0 {
			negatives = append(negatives, v)
		}
		if v > factor*n {
			oversized = append(oversized, v)
		}
	}
	for v := 0; v < n; v++ {
		if counts[v] == 0 {
			missing = append(missing, v)
		}
	}

	anomalies := []domain.Anomaly{}
	add := func(t domain.AnomalyType, values []int, format string) {
		if len(values) == 0 {
			return
		}
		slices.Sort(values)
		anomalies = append(anomalies, domain.Anomaly{
			Type:     t,
			Severity: t.Severity(),
			Message:  fmt.Sprintf(format, values),
			Values:   values,
		})
	}
	add(domain.AnomalyDuplicate, duplicates, "duplicate order values: %v")
	add(domain.AnomalyGap, missing, "missing order values: %v")
	add(domain.AnomalyNegative, negatives, "negative order values: %v")
	add(domain.AnomalyOversized, oversized, fmt.Sprintf("order values above %d: %%v", factor*n))
	return anomalies
}

// BuildReport expects links already sorted by domain.CompareLinks.
func BuildReport(ownerID string, links []domain.Link, policy DiagnosticsPolicy) *domain.DiagnosticReport {
	report := &domain.DiagnosticReport{
		Success:    true,
		OwnerID:    ownerID,
		TotalItems: len(links),
		Items:      make([]domain.ItemSummary, 0, len(links)),
	}

	for i, l := range links {
		if i == 0 || l.Order < report.MinOrder {
			report.MinOrder = l.Order
		}
		if i == 0 || l.Order > report.MaxOrder {
			report.MaxOrder = l.Order
		}
		report.Items = append(report.Items, domain.ItemSummary{ID: l.ID, Title: l.Title, Order: l.Order})
	}

	report.Anomalies = Analyze(links, policy)
	report.Consistent = len(report.Anomalies) == 0
	return report
}
