package importer_test

import (
	"testing"

	"github.com/AdamWu1996/YCS/internal/importer"
	"github.com/AdamWu1996/YCS/internal/staff"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func staffList(names ...string) []staff.Profile {
	out := make([]staff.Profile, len(names))
	for i, n := range names {
		out[i] = staff.Profile{ID: uuid.New(), Name: n}
	}
	return out
}

func TestMatchStaff(t *testing.T) {
	list := staffList("Maria Santos", "J. Smith", "Wei Chen")

	t.Run("exact case-insensitive", func(t *testing.T) {
		got := importer.MatchStaff("maria santos", list)
		if assert.NotNil(t, got) {
			assert.Equal(t, "Maria Santos", got.Name)
		}
	})

	t.Run("source name contains known name", func(t *testing.T) {
		got := importer.MatchStaff("Wei Chen (Contractor)", list)
		if assert.NotNil(t, got) {
			assert.Equal(t, "Wei Chen", got.Name)
		}
	})

	t.Run("known name contains source name", func(t *testing.T) {
		got := importer.MatchStaff("Santos", list)
		if assert.NotNil(t, got) {
			assert.Equal(t, "Maria Santos", got.Name)
		}
	})

	t.Run("exact beats containment", func(t *testing.T) {
		withSub := staffList("Ana", "Ana Lima")
		got := importer.MatchStaff("Ana Lima", withSub)
		if assert.NotNil(t, got) {
			assert.Equal(t, "Ana Lima", got.Name)
		}
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, importer.MatchStaff("Unknown Person", list))
	})

	t.Run("blank name", func(t *testing.T) {
		assert.Nil(t, importer.MatchStaff("   ", list))
	})
}

func TestMatchSession(t *testing.T) {
	session := importer.NewMatchSession()
	id := uuid.New()

	session.Remember("  Maria SANTOS ", id)

	got, ok := session.Lookup("maria santos")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = session.Lookup("someone else")
	assert.False(t, ok)
}

func TestMatchSession_SnapshotRoundTrip(t *testing.T) {
	session := importer.NewMatchSession()
	id := uuid.New()
	session.Remember("Wei Chen", id)

	restored := importer.NewMatchSession()
	restored.Restore(session.Snapshot())

	got, ok := restored.Lookup("wei chen")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestMatchSession_RestoreSkipsBadIDs(t *testing.T) {
	session := importer.NewMatchSession()
	session.Restore(map[string]string{"broken": "not-a-uuid"})

	_, ok := session.Lookup("broken")
	assert.False(t, ok)
}
