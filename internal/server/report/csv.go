// Package report renders allocation entries as the CSV export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/equiptracker/internal/server/models"
	"github.com/dmitrijs2005/equiptracker/internal/server/ordering"
)

// Header is the first row of every export.
var Header = []string{"Location", "Robot", "Surrogate", "Headset"}

// Row renders one entry: the normalized location followed by the trimmed
// equipment identifiers, empty when absent.
func Row(e *models.Entry) []string {
	return []string{
		ordering.NormalizeLocation(e.Location),
		strings.TrimSpace(models.Deref(e.Robot)),
		strings.TrimSpace(models.Deref(e.Surrogate)),
		strings.TrimSpace(e.Headset),
	}
}

// WriteCSV writes the header and one row per entry, in the given order,
// with CRLF line endings.
func WriteCSV(w io.Writer, entries []models.Entry) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range entries {
		if err := cw.Write(Row(&entries[i])); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
