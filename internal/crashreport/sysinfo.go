package crashreport

import (
	"strings"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

// ParseSysinfo parses systeminfo-style "Key: Value" text. Lines without a
// colon continue the most recent key's latest value.
func ParseSysinfo(text string) models.SysinfoData {
	data := models.NewSysinfoData()
	current := ""

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			data.Add(key, strings.TrimSpace(value))
			current = key
			continue
		}
		if current != "" {
			data.Extend(current, trimmed)
		}
	}
	return data
}
