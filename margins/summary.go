package margins

import (
	"fmt"
	"sort"
	"strings"
)

// Summary renders the result as a fixed-width table in the style of Stata's
// margins output. Presentation only; all numbers come straight from the
// Effect records.
func (r *Result) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Average marginal effects%34sNumber of obs = %d\n", "", r.Obs)
	if r.hasInference() {
		stat := r.Distribution.String()
		fmt.Fprintf(&b, "Reference distribution: %s%23sConfidence level = %g%%\n",
			stat, "", r.ConfidenceLevel*100)
	}
	b.WriteString("\n")

	atWidth := 0
	for _, e := range r.Effects {
		if w := len(formatAt(e.At)); w > atWidth {
			atWidth = w
		}
	}
	withAt := atWidth > 0
	if withAt && atWidth < 12 {
		atWidth = 12
	}

	// Header.
	fmt.Fprintf(&b, "%-16s", "Term")
	if withAt {
		fmt.Fprintf(&b, "%-*s", atWidth+2, "At")
	}
	fmt.Fprintf(&b, "%12s", "dy/dx")
	if r.hasInference() {
		stat := r.Distribution.String()
		fmt.Fprintf(&b, "%12s%10s%10s%14s%14s",
			"Std.Err.", stat, "P>|"+stat+"|", "Lower", "Upper")
	}
	b.WriteString("\n")
	width := 28
	if withAt {
		width += atWidth + 2
	}
	if r.hasInference() {
		width += 60
	}
	b.WriteString(strings.Repeat("-", width))
	b.WriteString("\n")

	for _, e := range r.Effects {
		fmt.Fprintf(&b, "%-16s", e.Term)
		if withAt {
			fmt.Fprintf(&b, "%-*s", atWidth+2, formatAt(e.At))
		}
		fmt.Fprintf(&b, "%12.6g", e.Estimate)
		if e.Inference != nil {
			fmt.Fprintf(&b, "%12.6g%10.4g%10.4g%14.6g%14.6g",
				e.Inference.SE, e.Inference.Statistic, e.Inference.P,
				e.Inference.Lower, e.Inference.Upper)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Result) hasInference() bool {
	for _, e := range r.Effects {
		if e.Inference != nil {
			return true
		}
	}
	return false
}

func formatAt(at map[string]float64) string {
	if len(at) == 0 {
		return ""
	}
	names := make([]string, 0, len(at))
	for name := range at {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, at[name])
	}
	return strings.Join(parts, " ")
}
