package mpatch

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	addColor    = color.New(color.FgGreen)
	delColor    = color.New(color.FgRed)
	headColor   = color.New(color.FgCyan)
	faintColor  = color.New(color.Faint)
	statusColor = map[HunkStatus]*color.Color{
		HunkApplied:             color.New(color.FgGreen),
		HunkSuppressed:          color.New(color.FgYellow),
		HunkPartiallySuppressed: color.New(color.FgYellow),
		HunkNotFound:            color.New(color.FgRed),
	}
)

func paint(c *color.Color, colorize bool, s string) string {
	if !colorize {
		return s
	}
	return c.Sprint(s)
}

// RenderPatch formats a patch for human review: hunk headers plus marked
// lines, with additions and removals highlighted when colorize is set. The
// output is a preview, not the wire format; use Serialize for that.
func RenderPatch(p *Patch, colorize bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "patch %s (source %s, %d hunks)\n", p.ID, p.Source, len(p.Hunks))
	for i, h := range p.Hunks {
		header := fmt.Sprintf("@@ hunk %d: lines %d-%d @@", i+1, h.OldStart+1, h.OldStart+h.OldLen())
		sb.WriteString(paint(headColor, colorize, header))
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			line := string(l.Kind.marker()) + l.Text
			switch l.Kind {
			case LineAdded:
				line = paint(addColor, colorize, line)
			case LineRemoved:
				line = paint(delColor, colorize, line)
			default:
				line = paint(faintColor, colorize, line)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RenderReport formats an application report, one line per hunk plus reject
// details, with statuses highlighted when colorize is set.
func RenderReport(r *Report, colorize bool) string {
	var sb strings.Builder
	applied, suppressed, partial, notFound := r.Counts()
	fmt.Fprintf(&sb, "patch %s: %d applied, %d suppressed, %d partial, %d not found\n",
		r.PatchID, applied, suppressed, partial, notFound)
	for _, h := range r.Hunks {
		status := paint(statusColor[h.Status], colorize, string(h.Status))
		if h.Status == HunkNotFound {
			fmt.Fprintf(&sb, "  hunk %d at line %d: %s\n", h.Hunk+1, h.OldStart+1, status)
			continue
		}
		fmt.Fprintf(&sb, "  hunk %d at line %d: %s at line %d (score %.2f, drift %+d)\n",
			h.Hunk+1, h.OldStart+1, status, h.Anchor+1, h.Score, h.Drift)
		for _, rej := range h.Rejects {
			fmt.Fprintf(&sb, "    reject: line %q no longer present\n", rej.Text)
		}
		for _, d := range h.Decisions {
			if !d.Apply {
				fmt.Fprintf(&sb, "    suppressed by %s\n", d.Predicate)
			}
		}
	}
	return sb.String()
}
