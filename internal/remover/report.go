package remover

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Rana718/cmsmod/internal/types"
)

// Report is the audit record written after a deletion run.
type Report struct {
	GeneratedAt time.Time             `yaml:"generated_at"`
	Options     ReportOptions         `yaml:"options"`
	Deleted     types.DeleteCounts    `yaml:"deleted"`
	Modules     []types.DeletedModule `yaml:"modules"`
	Categories  []types.Category      `yaml:"categories,omitempty"`
}

type ReportOptions struct {
	RemoveCategories bool `yaml:"remove_categories"`
	Force            bool `yaml:"force"`
}

func NewReport(res *Result, opts Options, now time.Time) Report {
	return Report{
		GeneratedAt: now.UTC(),
		Options:     ReportOptions{RemoveCategories: opts.RemoveCategories, Force: opts.Force},
		Deleted:     res.Deleted,
		Modules:     res.Modules,
		Categories:  res.Categories,
	}
}

func WriteReport(path string, report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
