package patterns

import (
	"sort"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

// SignatureKey derives the grouping key for a crash report from its first
// two Sig slots, falling back to the event type.
func SignatureKey(report models.CrashReport) string {
	sig0 := report.SigValues["0"]
	sig1 := report.SigValues["1"]
	if sig0 != "" || sig1 != "" {
		return "Sig0=" + orNA(sig0) + " Sig1=" + orNA(sig1)
	}
	if report.EventType != "" {
		return "EventType=" + report.EventType
	}
	return "Unknown"
}

// Cluster groups reports by SignatureKey. Groups are ordered by count
// descending; equal counts keep first-appearance order.
func Cluster(reports []models.CrashReport) []models.SignatureGroup {
	groups := make([]models.SignatureGroup, 0)
	index := make(map[string]int)
	for _, report := range reports {
		key := SignatureKey(report)
		if i, ok := index[key]; ok {
			groups[i].Count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, models.SignatureGroup{Signature: key, Count: 1})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}

func orNA(v string) string {
	if v == "" {
		return "NA"
	}
	return v
}
