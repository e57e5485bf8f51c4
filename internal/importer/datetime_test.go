package importer_test

import (
	"testing"
	"time"

	"github.com/AdamWu1996/YCS/internal/importer"

	"github.com/stretchr/testify/assert"
)

func TestResolveDateTime_NativeAndText(t *testing.T) {
	native := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

	t.Run("native datetime wins outright", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.Cell{}, importer.TimeCell(native))
		assert.True(t, ok)
		assert.Equal(t, native, got)
	})

	t.Run("free text full timestamp", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.Cell{}, importer.TextCell("2026-03-09 08:30"))
		assert.True(t, ok)
		assert.Equal(t, native, got)
	})

	t.Run("slash date", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.Cell{}, importer.TextCell("2026/3/9 08:30"))
		assert.True(t, ok)
		assert.Equal(t, native, got)
	})

	t.Run("empty cell fails", func(t *testing.T) {
		_, ok := importer.ResolveDateTime(importer.TextCell("2026-03-09"), importer.Cell{})
		assert.False(t, ok)
	})
}

func TestResolveDateTime_SpreadsheetSerials(t *testing.T) {
	t.Run("full serial carries date and time", func(t *testing.T) {
		// 2026-03-09 is serial 46090; 0.5 is noon
		got, ok := importer.ResolveDateTime(importer.Cell{}, importer.NumberCell(46090.5))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("fractional serial combines with date cell", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.TextCell("2026-03-09"), importer.NumberCell(0.354166666667))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("fractional serial without date fails", func(t *testing.T) {
		_, ok := importer.ResolveDateTime(importer.Cell{}, importer.NumberCell(0.5))
		assert.False(t, ok)
	})
}

func TestResolveDateTime_TimeOnlyText(t *testing.T) {
	t.Run("combines with date cell", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.TextCell("2026-03-09"), importer.TextCell("08:30"))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("with seconds", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.TextCell("2026-03-09"), importer.TextCell("17:45:30"))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 9, 17, 45, 30, 0, time.UTC), got)
	})

	t.Run("serial date part", func(t *testing.T) {
		got, ok := importer.ResolveDateTime(importer.NumberCell(46090), importer.TextCell("08:30"))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("no date part fails", func(t *testing.T) {
		_, ok := importer.ResolveDateTime(importer.Cell{}, importer.TextCell("08:30"))
		assert.False(t, ok)
	})
}

func TestResolveDateTime_ZeroEpochNative(t *testing.T) {
	// badge exports sometimes hand over native times anchored at the
	// spreadsheet epoch; those are time-of-day, not a year-1899 shift
	epochTime := time.Date(1899, 12, 30, 9, 15, 0, 0, time.UTC)

	got, ok := importer.ResolveDateTime(importer.TextCell("2026-03-09"), importer.TimeCell(epochTime))
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 9, 9, 15, 0, 0, time.UTC), got)
}

func TestResolveDate(t *testing.T) {
	t.Run("date column preferred", func(t *testing.T) {
		got, ok := importer.ResolveDate(importer.TextCell("2026-03-09"), importer.TextCell("2026-03-10 08:00"))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("falls back to check-in", func(t *testing.T) {
		got, ok := importer.ResolveDate(importer.Cell{}, importer.TextCell("2026-03-10 08:00"))
		assert.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("time-only check-in cannot carry the date", func(t *testing.T) {
		_, ok := importer.ResolveDate(importer.Cell{}, importer.TextCell("08:00"))
		assert.False(t, ok)
	})
}
