package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/upb/ciw-intake/internal/observability"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/services/pipeline"
)

type summaryView struct {
	RunID    string         `json:"run_id"`
	Counts   map[string]int `json:"counts"`
	Skipped  int            `json:"skipped"`
	Total    int            `json:"total"`
	Duration string         `json:"duration"`
}

type sectionView struct {
	Name     string   `json:"name"`
	Messages []string `json:"messages"`
}

type checkView struct {
	File     string        `json:"file"`
	Code     string        `json:"code"`
	Version  string        `json:"version,omitempty"`
	Sections []sectionView `json:"sections,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSummary prints the codes of a batch run in ledger order
func writeSummary(w io.Writer, format string, s *pipeline.Summary) error {
	view := summaryView{
		RunID:    s.RunID.String(),
		Counts:   make(map[string]int, len(s.Counts)),
		Skipped:  s.Skipped,
		Total:    s.Total(),
		Duration: s.Duration.Round(time.Millisecond).String(),
	}
	for code, n := range s.Counts {
		view.Counts[code.String()] = n
	}

	if format == observability.FormatJSON {
		return writeJSON(w, view)
	}

	fmt.Fprintf(w, "run %s finished in %s\n", view.RunID, view.Duration)
	for _, code := range models.AllErrorCodes() {
		if n := s.Counts[code]; n > 0 {
			fmt.Fprintf(w, "  %-24s %d\n", code.String(), n)
		}
	}
	fmt.Fprintf(w, "  %-24s %d\n", "skipped", view.Skipped)
	_, err := fmt.Fprintf(w, "  %-24s %d\n", "total", view.Total)
	return err
}

// writeCheck prints a dry-run outcome with the failures of every section
// that ran
func writeCheck(w io.Writer, format string, out *pipeline.Outcome) error {
	view := checkView{
		File: out.File.Name,
		Code: out.Code.String(),
	}
	if out.Record != nil {
		view.Version = out.Record.Version()
	}
	if out.Err != nil {
		view.Error = out.Err.Error()
	}
	if out.Duplicate != nil && !out.Duplicate.Valid() {
		view.Sections = append(view.Sections, sectionView{Name: "Duplicate", Messages: out.Duplicate.Messages()})
	}
	if out.Validation != nil {
		for _, s := range models.AllSections() {
			section := out.Validation.Section(s)
			view.Sections = append(view.Sections, sectionView{Name: s.String(), Messages: section.Messages()})
		}
	}

	if format == observability.FormatJSON {
		return writeJSON(w, view)
	}

	fmt.Fprintf(w, "%s: %s\n", view.File, view.Code)
	if view.Version != "" {
		fmt.Fprintf(w, "  version %s\n", view.Version)
	}
	if view.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", view.Error)
	}
	for _, s := range view.Sections {
		if len(s.Messages) == 0 {
			fmt.Fprintf(w, "  %s: ok\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "  %s:\n", s.Name)
		for _, msg := range s.Messages {
			fmt.Fprintf(w, "    - %s\n", msg)
		}
	}
	return nil
}

func writeVersion(w io.Writer, format string, version uint, dirty bool) error {
	if format == observability.FormatJSON {
		return writeJSON(w, map[string]interface{}{"version": version, "dirty": dirty})
	}
	_, err := fmt.Fprintf(w, "version %d (dirty: %t)\n", version, dirty)
	return err
}
