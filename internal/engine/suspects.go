package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// TaxonomyFile is the YAML root structure of a suspect rule pack.
type TaxonomyFile struct {
	Buckets []models.SuspectBucket `yaml:"buckets"`
}

type compiledBucket struct {
	name    string
	pattern *regexp.Regexp
}

// SuspectClassifier counts events per failure category.
type SuspectClassifier struct {
	buckets []compiledBucket
	logger  *slog.Logger
}

// NewSuspectClassifier loads the taxonomy from path, or the built-in one
// when path is empty.
func NewSuspectClassifier(path string, logger *slog.Logger) (*SuspectClassifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data := defaultTaxonomy
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
		}
	}

	var file TaxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return NewSuspectClassifierFromBuckets(file.Buckets, logger)
}

// NewSuspectClassifierFromBuckets compiles buckets in declaration order.
func NewSuspectClassifierFromBuckets(buckets []models.SuspectBucket, logger *slog.Logger) (*SuspectClassifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(buckets) == 0 {
		return nil, errors.New("taxonomy has no buckets")
	}

	compiled := make([]compiledBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Name == "" {
			return nil, errors.New("taxonomy bucket without a name")
		}
		re, err := regexp.Compile("(?i)" + b.Pattern)
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", b.Name, err)
		}
		compiled = append(compiled, compiledBucket{name: b.Name, pattern: re})
	}
	logger.Debug("suspect taxonomy loaded", slog.Int("buckets", len(compiled)))
	return &SuspectClassifier{buckets: compiled, logger: logger}, nil
}

// Buckets returns the bucket names in declaration order.
func (c *SuspectClassifier) Buckets() []string {
	names := make([]string, 0, len(c.buckets))
	for _, b := range c.buckets {
		names = append(names, b.name)
	}
	return names
}

// Score counts, per bucket, the events whose provider and message match it.
// Only non-zero buckets are returned, by count descending with ties in
// declaration order.
func (c *SuspectClassifier) Score(events []models.Event) []models.SuspectScore {
	counts := make([]int, len(c.buckets))
	for _, ev := range events {
		blob := ev.Provider + " " + ev.Message
		for i, b := range c.buckets {
			if b.pattern.MatchString(blob) {
				counts[i]++
			}
		}
	}

	scores := make([]models.SuspectScore, 0, len(c.buckets))
	for i, b := range c.buckets {
		if counts[i] > 0 {
			scores = append(scores, models.SuspectScore{Name: b.name, Count: counts[i]})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Count > scores[j].Count
	})
	return scores
}
