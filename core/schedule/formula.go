package schedule

import (
	"strings"

	"github.com/kilianp07/minesched/core/model"
)

// Formula selects how a task duration is derived.
type Formula int

const (
	FormulaFixed Formula = iota
	FormulaArea
	FormulaTonnage
	FormulaBogger
	FormulaBackfillPrep
)

// String returns a human-readable name for the formula.
func (f Formula) String() string {
	switch f {
	case FormulaArea:
		return "area"
	case FormulaTonnage:
		return "tonnage"
	case FormulaBogger:
		return "bogger"
	case FormulaBackfillPrep:
		return "backfill-prep"
	default:
		return "fixed"
	}
}

// formulaRules is evaluated in order; the first matching family wins.
var formulaRules = []struct {
	formula  Formula
	contains []string
}{
	{FormulaArea, []string{"meter", "area", "m/h"}},
	{FormulaTonnage, []string{"ton", "t/h"}},
	{FormulaBogger, []string{"bogt", "bogger", "trolley"}},
	{FormulaBackfillPrep, []string{"bfp", "backfill"}},
}

// ResolveFormula maps a unit of measure name to its formula family.
// Unmatched names fall back to FormulaFixed.
func ResolveFormula(uom string) Formula {
	name := strings.ToLower(strings.TrimSpace(uom))
	if name == "" {
		return FormulaFixed
	}
	for _, r := range formulaRules {
		for _, c := range r.contains {
			if strings.Contains(name, c) {
				return r.formula
			}
		}
	}
	return FormulaFixed
}

// FormulaTable caches the formula of every known unit of measure.
type FormulaTable map[string]Formula

// NewFormulaTable resolves each unit of measure once.
func NewFormulaTable(uoms []model.UnitOfMeasure) FormulaTable {
	t := make(FormulaTable, len(uoms))
	for _, u := range uoms {
		t[normalizeUOM(u.Name)] = ResolveFormula(u.Name)
	}
	return t
}

// Lookup returns the formula for name, resolving names missing from the table.
func (t FormulaTable) Lookup(name string) Formula {
	if f, ok := t[normalizeUOM(name)]; ok {
		return f
	}
	return ResolveFormula(name)
}

func normalizeUOM(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
