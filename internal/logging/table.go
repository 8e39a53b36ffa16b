// Package logging renders analysis results for the console and for report
// files. This file holds the aligned metric table used by both.
package logging

import (
	"fmt"
	"strings"
)

// MetricRow is one measurement line. Value and Target are pre-formatted so
// mixed precisions can coexist in one table; Target may be empty when the
// metric has no release target.
type MetricRow struct {
	Label          string
	Value          string
	Target         string
	Unit           string
	Interpretation string
}

// MetricTable renders aligned Measured/Target columns with an optional
// interpretation column. Labels left-align, values right-align.
type MetricTable struct {
	Rows []MetricRow
}

// String renders the table. The Target and Interpretation columns only
// appear when at least one row uses them.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasTarget, hasInterp := false, false
	labelW, valueW, targetW, unitW := 0, len("Measured"), len("Target"), 0
	for _, row := range t.Rows {
		if row.Target != "" {
			hasTarget = true
		}
		if row.Interpretation != "" {
			hasInterp = true
		}
		labelW = max(labelW, len(row.Label))
		valueW = max(valueW, len(row.Value))
		targetW = max(targetW, len(row.Target))
		unitW = max(unitW, len(row.Unit))
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelW+2))
	sb.WriteString(fmt.Sprintf("%*s  ", valueW, "Measured"))
	if hasTarget {
		sb.WriteString(fmt.Sprintf("%*s  ", targetW, "Target"))
	}
	if unitW > 0 {
		sb.WriteString(strings.Repeat(" ", unitW+1))
	}
	if hasInterp {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelW, row.Label))
		sb.WriteString(fmt.Sprintf("%*s  ", valueW, row.Value))
		if hasTarget {
			target := row.Target
			if target == "" {
				target = "-"
			}
			sb.WriteString(fmt.Sprintf("%*s  ", targetW, target))
		}
		if unitW > 0 {
			sb.WriteString(fmt.Sprintf("%-*s ", unitW, row.Unit))
		}
		if hasInterp {
			sb.WriteString(row.Interpretation)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
