package crashreport

import (
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

var (
	sigValueKey = regexp.MustCompile(`^Sig\[(\d+)\]\.Value`)
	sigNameKey  = regexp.MustCompile(`^Sig\[(\d+)\]\.Name`)
	nsValueKey  = regexp.MustCompile(`^Ns\[(\d+)\]\.Value`)
)

// stopCodeKeys are checked in order for a directly recorded stop code.
var stopCodeKeys = []string{"StopCode", "Stopcode", "Code", "BugcheckCode", "Bugcheck"}

// stopCodeSigNames are lower-cased Sig names whose value holds the stop code.
var stopCodeSigNames = map[string]bool{
	"stopcode":     true,
	"code":         true,
	"bugcheck":     true,
	"bugcheckcode": true,
}

// Parser reads Windows Error Reporting Report.wer files.
type Parser struct {
	logger *slog.Logger
}

// NewParser constructs a Parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile reads and parses one report. An unreadable file yields a
// report carrying only its path.
func (p *Parser) ParseFile(path string) models.CrashReport {
	raw, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("crash report unreadable", slog.String("path", path), slog.Any("error", err))
		return ParseReport("", path)
	}
	return ParseReport(DecodeText(raw), path)
}

// ParseReport extracts the structured fields of a report from its text.
func ParseReport(text, path string) models.CrashReport {
	fields := make(map[string]string)
	report := models.CrashReport{
		Path:      path,
		SigValues: make(map[string]string),
		SigNames:  make(map[string]string),
		NsValues:  make(map[string]string),
	}
	// sig names in file order, for the stop-code alias scan
	var nameOrder []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		fields[key] = value

		if m := sigValueKey.FindStringSubmatch(key); m != nil {
			report.SigValues[m[1]] = value
		} else if m := sigNameKey.FindStringSubmatch(key); m != nil {
			if _, seen := report.SigNames[m[1]]; !seen {
				nameOrder = append(nameOrder, m[1])
			}
			report.SigNames[m[1]] = value
		} else if m := nsValueKey.FindStringSubmatch(key); m != nil {
			report.NsValues[m[1]] = value
		}
	}

	report.EventType = fields["EventType"]
	report.FriendlyEventName = fields["FriendlyEventName"]
	report.ReportID = fields["ReportIdentifier"]
	report.DumpFile = firstNonEmpty(fields, "DumpFile", "DumpPath")
	report.ProblemSignature = firstNonEmpty(fields, "ProblemSignature", "ProblemSignatures")
	report.StopCode = stopCode(fields, report.SigNames, report.SigValues, nameOrder)
	return report
}

func stopCode(fields, sigNames, sigValues map[string]string, nameOrder []string) string {
	for _, key := range stopCodeKeys {
		if v, ok := fields[key]; ok {
			return v
		}
	}
	// only the first aliased name counts; a missing value falls through to slot zero
	for _, idx := range nameOrder {
		if stopCodeSigNames[strings.ToLower(sigNames[idx])] {
			if v, ok := sigValues[idx]; ok {
				return v
			}
			break
		}
	}
	return sigValues["0"]
}

func firstNonEmpty(fields map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := fields[key]; v != "" {
			return v
		}
	}
	return ""
}
