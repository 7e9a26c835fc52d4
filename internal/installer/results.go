package installer

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Status classifies the outcome of one product installation.
type Status string

// Installation outcomes.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result reports what happened to one product during a run.
type Result struct {
	Product  string `json:"product"            yaml:"product"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Branch   string `json:"branch,omitempty"   yaml:"branch,omitempty"`
	Status   Status `json:"status"             yaml:"status"`
	Details  string `json:"details,omitempty"  yaml:"details,omitempty"`
}

// Results collects the outcomes of a run in installation order.
type Results []Result

// Count returns the number of results with the given status.
func (r Results) Count(status Status) int {
	count := 0

	for _, result := range r {
		if result.Status == status {
			count++
		}
	}

	return count
}

// Failed reports whether any result is an error.
func (r Results) Failed() bool {
	return r.Count(StatusError) > 0
}

// Summary returns a one-line count of the run's outcomes.
func (r Results) Summary() string {
	if len(r) == 0 {
		return "No installations performed."
	}

	var parts []string

	if n := r.Count(StatusSuccess); n > 0 {
		parts = append(parts, fmt.Sprintf("%d successful", n))
	}

	if n := r.Count(StatusError); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}

	if n := r.Count(StatusSkipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}

	return "Installation complete: " + strings.Join(parts, ", ")
}

// RenderTable writes the results as a table.
func (r Results) RenderTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Product", "Provider", "Branch", "Status", "Details")

	for _, result := range r {
		_ = table.Append(result.Product, result.Provider, result.Branch, string(result.Status), result.Details)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
