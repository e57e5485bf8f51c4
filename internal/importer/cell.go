package importer

import (
	"fmt"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellTime
)

// Cell is one value of a tabular attendance export: free text, a numeric
// spreadsheet serial, a native date/time, or empty.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// Row maps source column names to cell values.
type Row map[string]Cell

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }
func TimeCell(t time.Time) Cell { return Cell{Kind: CellTime, Time: t} }

func (c Cell) IsEmpty() bool {
	if c.Kind == CellEmpty {
		return true
	}
	if c.Kind == CellText && strings.TrimSpace(c.Text) == "" {
		return true
	}
	return false
}

// CellFromAny converts a decoded JSON value into a Cell.
func CellFromAny(v any) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{Kind: CellEmpty}
	case string:
		return TextCell(val)
	case float64:
		return NumberCell(val)
	case int:
		return NumberCell(float64(val))
	case time.Time:
		return TimeCell(val)
	default:
		return TextCell(fmt.Sprint(val))
	}
}

// RowFromAny converts one decoded JSON row into a Row.
func RowFromAny(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		row[k] = CellFromAny(v)
	}
	return row
}
