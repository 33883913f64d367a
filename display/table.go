package display

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/teranos/almanac/errors"
)

// Table renders rows under header as a boxed terminal table.
func Table(w io.Writer, header []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, header)
	data = append(data, rows...)

	err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		WithWriter(w).
		Render()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	return nil
}
