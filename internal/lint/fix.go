package lint

import (
	"sort"
	"strings"
)

/*
 * ApplyFixes applies the first fix of every diagnostic to src and returns
 * the rewritten text plus the number of fixes applied.
 *
 * Edits are applied back to front so earlier offsets stay valid.  A fix
 * whose edits conflict with an edit already accepted is skipped as a whole;
 * running lint again on the result picks it up.
 */
func ApplyFixes(src string, diags []Diagnostic) (string, int) {
	type pending struct {
		edit  TextEdit
		order int
	}

	var accepted []pending
	applied := 0
	for _, d := range diags {
		if !d.AutoFixable() {
			continue
		}
		edits := d.Fixes[0].TextEdits
		conflict := false
		for _, e := range edits {
			for _, p := range accepted {
				if conflicts(e, p.edit) {
					conflict = true
				}
			}
		}
		if conflict {
			continue
		}
		for _, e := range edits {
			accepted = append(accepted, pending{edit: e, order: len(accepted)})
		}
		applied++
	}

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].edit.Start != accepted[j].edit.Start {
			return accepted[i].edit.Start > accepted[j].edit.Start
		}
		// Insertions at the same offset keep their diagnostic order.
		return accepted[i].order > accepted[j].order
	})

	out := src
	for _, p := range accepted {
		e := p.edit
		if e.Start < 0 || e.End > len(out) || e.Start > e.End {
			continue
		}
		var b strings.Builder
		b.Grow(len(out) - (e.End - e.Start) + len(e.NewText))
		b.WriteString(out[:e.Start])
		b.WriteString(e.NewText)
		b.WriteString(out[e.End:])
		out = b.String()
	}
	return out, applied
}

// conflicts reports whether two edits cannot both be applied.  Ranges may
// touch, and any number of insertions may share an offset.
func conflicts(a, b TextEdit) bool {
	if a.Start < b.End && b.Start < a.End {
		return true
	}
	return a.Start == b.Start && (a.Start != a.End || b.Start != b.End)
}
