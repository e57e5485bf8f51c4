package importer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AdamWu1996/YCS/internal/staff"

	"github.com/google/uuid"
)

// noiseThreshold filters spurious badge taps: a closed interval shorter
// than this is discarded as noise, counted as skipped rather than failed.
const noiseThreshold = 5 * time.Minute

type Candidate struct {
	StaffID         uuid.UUID
	RecordDate      time.Time
	FactoryLocation string
	CheckInTime     time.Time
	CheckOutTime    *time.Time
	HoursWorked     float64
	Notes           *string
}

type Rejection struct {
	RowIndex int    `json:"row_index"`
	Reason   string `json:"reason"`
}

// Builder turns raw rows into candidate records using a resolved header
// map, the known staff list, and the session's name-resolution cache.
type Builder struct {
	Headers HeaderMap
	Staff   []staff.Profile
	Session *MatchSession
}

func (b *Builder) cell(row Row, field Field) Cell {
	col, ok := b.Headers[field]
	if !ok {
		return Cell{Kind: CellEmpty}
	}
	return row[col]
}

// Build is a pure transform: it returns a candidate, a categorized
// rejection, or noise=true for a sub-threshold interval.
func (b *Builder) Build(rowIndex int, row Row) (*Candidate, *Rejection, bool) {
	nameCell := b.cell(row, FieldName)
	rawName := cellText(nameCell)
	if rawName == "" {
		return nil, &Rejection{RowIndex: rowIndex, Reason: "staff name is missing"}, false
	}

	staffID, ok := b.Session.Lookup(rawName)
	if !ok {
		matched := MatchStaff(rawName, b.Staff)
		if matched == nil {
			return nil, &Rejection{
				RowIndex: rowIndex,
				Reason:   fmt.Sprintf("staff not matched: %s", rawName),
			}, false
		}
		staffID = matched.ID
		b.Session.Remember(rawName, staffID)
	}

	location := cellText(b.cell(row, FieldLocation))
	if location == "" {
		return nil, &Rejection{RowIndex: rowIndex, Reason: "factory location is missing"}, false
	}

	dateCell := b.cell(row, FieldDate)
	checkInCell := b.cell(row, FieldCheckIn)

	recordDate, ok := ResolveDate(dateCell, checkInCell)
	if !ok {
		return nil, &Rejection{
			RowIndex: rowIndex,
			Reason:   "date is missing and cannot be derived from check-in",
		}, false
	}

	checkIn, ok := ResolveDateTime(firstNonEmpty(dateCell, checkInCell), checkInCell)
	if !ok {
		return nil, &Rejection{RowIndex: rowIndex, Reason: "check-in time could not be resolved"}, false
	}

	candidate := &Candidate{
		StaffID:         staffID,
		RecordDate:      recordDate,
		FactoryLocation: location,
		CheckInTime:     checkIn,
	}

	checkOutCell := b.cell(row, FieldCheckOut)
	if !checkOutCell.IsEmpty() {
		checkOut, ok := ResolveDateTime(firstNonEmpty(dateCell, checkInCell), checkOutCell)
		if !ok {
			return nil, &Rejection{RowIndex: rowIndex, Reason: "check-out time could not be resolved"}, false
		}

		if checkOut.Sub(checkIn) < noiseThreshold {
			return nil, nil, true
		}

		candidate.CheckOutTime = &checkOut
		candidate.HoursWorked = roundHours(checkOut.Sub(checkIn))
	}

	return candidate, nil, false
}

func cellText(c Cell) string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return strings.TrimSpace(fmt.Sprintf("%v", c.Number))
	default:
		return ""
	}
}

func firstNonEmpty(cells ...Cell) Cell {
	for _, c := range cells {
		if !c.IsEmpty() {
			return c
		}
	}
	return Cell{Kind: CellEmpty}
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
