package cleanup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// NothingToRemove is printed when the manifest has no entries
const NothingToRemove = "No directories found to remove"

// WriteSummary prints the end-of-run report. Dry runs use the future tense.
func (r *Result) WriteSummary(w io.Writer) error {
	if r.Empty {
		_, err := fmt.Fprintln(w, NothingToRemove)
		return err
	}

	spaceVerb, dirsVerb := "Space freed", "Directories removed"
	if r.DryRun {
		spaceVerb, dirsVerb = "Space will be freed", "Directories will be removed"
	}

	_, err := fmt.Fprintf(w, "%s: %d Bytes (%s)\n%s %d\nDir list: %s\n",
		spaceVerb, r.Stats.BytesFreed, humanize.Bytes(r.Stats.BytesFreed),
		dirsVerb, r.Stats.DirectoriesRemoved,
		formatList(r.Targets),
	)
	return err
}

func formatList(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = strconv.Quote(p)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
