// Package export renders a finished batch — merged listing, suggestions,
// session handle — into output formats for files and stdout.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/merchkit/listsmith/internal/listing"
	"github.com/merchkit/listsmith/internal/session"
)

// Report is the top-level export structure for one batch run.
type Report struct {
	SessionID   string                 `json:"session_id"`
	Listing     *listing.MergedListing `json:"listing"`
	Suggestions []session.Suggestion   `json:"suggestions"`
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
