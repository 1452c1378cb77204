package selector

import (
	"fmt"

	"technews/internal/news"
)

// Report is the outcome of validating a selection. Errors make the
// selection invalid; warnings are advisory and never block a run.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string

	// ITTechRatio is the observed fraction of IT/Tech articles.
	ITTechRatio float64
	// CategoryDiversity is the number of distinct categories present.
	CategoryDiversity int
}

// Validate runs post-hoc sanity checks on a selection. It reads only;
// callers decide what to do with the report.
func (s *Selector) Validate(selected []*news.Article) Report {
	if len(selected) == 0 {
		return Report{
			Valid:  false,
			Errors: []string{"no articles selected"},
		}
	}

	var report Report

	if len(selected) < 3 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("only %d articles selected (expected 5)", len(selected)))
	}

	itTechCount := 0
	categoryCounts := make(map[news.Category]int)
	urls := make(map[string]bool, len(selected))
	duplicate := false

	for _, a := range selected {
		if a.Category.IsITTech() {
			itTechCount++
		}
		categoryCounts[a.Category]++
		if urls[a.URL] {
			duplicate = true
		}
		urls[a.URL] = true
	}

	report.ITTechRatio = float64(itTechCount) / float64(len(selected))
	if report.ITTechRatio < 0.6 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("it/tech ratio too low: %.0f%% (target: 60-80%%)", report.ITTechRatio*100))
	}

	maxDuplicate := 0
	for _, n := range categoryCounts {
		if n > maxDuplicate {
			maxDuplicate = n
		}
	}
	if maxDuplicate > s.MaxCategoryDuplicate {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("too many articles from same category: %d (max: %d)",
				maxDuplicate, s.MaxCategoryDuplicate))
	}

	if duplicate {
		report.Errors = append(report.Errors, "duplicate articles detected")
	}

	report.CategoryDiversity = len(categoryCounts)
	report.Valid = len(report.Errors) == 0
	return report
}
