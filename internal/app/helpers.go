package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Fprintln(color.Output, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}

// levelRow is the JSON shape of a listed level.
type levelRow struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist,omitempty"`
	Creator     string   `json:"creator,omitempty"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source"`
	Installed   bool     `json:"installed"`
	Queued      bool     `json:"queued"`
	Locked      bool     `json:"locked,omitempty"`
	Path        string   `json:"path,omitempty"`
	Description string   `json:"description,omitempty"`
}

var difficultyColors = map[catalog.Difficulty]*color.Color{
	catalog.DifficultyEasy:   color.New(color.FgGreen),
	catalog.DifficultyNormal: color.New(color.FgCyan),
	catalog.DifficultyHard:   color.New(color.FgYellow),
	catalog.DifficultyExpert: color.New(color.FgRed),
	catalog.DifficultyMaster: color.New(color.FgMagenta),
}

func difficultyString(d catalog.Difficulty) string {
	if c, ok := difficultyColors[d]; ok {
		return c.Sprint(d.Label())
	}
	return color.HiBlackString(d.Label())
}

// printLevels writes levels as a table, or as JSON with --json.
func printLevels(w io.Writer, levels []catalog.Level, e *env) error {
	rows := make([]levelRow, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, levelRow{
			ID:          l.ID,
			Title:       l.Title,
			Artist:      l.Artist,
			Creator:     l.Creator,
			Difficulty:  l.Difficulty.Label(),
			Tags:        l.Tags,
			Source:      l.Source.String(),
			Installed:   e.installed(l.ID),
			Queued:      e.queue.Contains(l.ID),
			Locked:      l.Locked,
			Path:        l.Path,
			Description: l.Description,
		})
	}

	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No levels found.")
		return nil
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("TITLE"), bold.Sprint("ARTIST"), bold.Sprint("DIFFICULTY"), bold.Sprint("TAGS"), "")
	for i, r := range rows {
		var marks []string
		if r.Installed {
			marks = append(marks, color.GreenString("✓"))
		}
		if r.Queued {
			marks = append(marks, color.CyanString("♪"))
		}
		if r.Locked {
			marks = append(marks, color.HiBlackString("locked"))
		}
		tags := ""
		if len(r.Tags) > 0 {
			tags = color.CyanString(strings.Join(r.Tags, ","))
		}
		tbl.AddRow(r.ID, r.Title, r.Artist, difficultyString(levels[i].Difficulty), tags, strings.Join(marks, " "))
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

// pageFooter prints the page position using the inclusive page count.
func pageFooter(w io.Writer, page, count, total int, noun string) {
	if flagJSON {
		return
	}
	fmt.Fprintf(w, "\npage %d/%d · %d %s\n", page+1, count+1, total, noun)
}
