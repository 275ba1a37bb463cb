package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/amishk599/leadradar/internal/model"
)

// WriteCSV writes the header and one row per lead as UTF-8 CSV.
func WriteCSV(w io.Writer, leads []*model.Lead, maxContacts int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(maxContacts)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, lead := range leads {
		if err := cw.Write(Row(lead, maxContacts)); err != nil {
			return fmt.Errorf("writing row for %s: %w", lead.Job.CompanyName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
