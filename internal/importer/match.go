package importer

import (
	"strings"

	"github.com/AdamWu1996/YCS/internal/staff"

	"github.com/google/uuid"
)

// MatchStaff resolves a source name against known staff: case-insensitive
// exact match first, then substring containment in either direction.
// Returns nil when no match is found; those rows need manual resolution.
func MatchStaff(rawName string, staffList []staff.Profile) *staff.Profile {
	trimmed := strings.TrimSpace(rawName)
	if trimmed == "" {
		return nil
	}
	normalized := strings.ToLower(trimmed)

	for i := range staffList {
		if strings.ToLower(strings.TrimSpace(staffList[i].Name)) == normalized {
			return &staffList[i]
		}
	}

	for i := range staffList {
		candidate := strings.ToLower(strings.TrimSpace(staffList[i].Name))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, normalized) || strings.Contains(normalized, candidate) {
			return &staffList[i]
		}
	}

	return nil
}

// MatchSession caches raw-name resolutions for the duration of one import
// session, including manual overrides supplied by the operator. It is
// explicit state handed to the candidate builder, never ambient.
type MatchSession struct {
	resolved map[string]uuid.UUID
}

func NewMatchSession() *MatchSession {
	return &MatchSession{resolved: make(map[string]uuid.UUID)}
}

func sessionKey(rawName string) string {
	return strings.ToLower(strings.TrimSpace(rawName))
}

func (s *MatchSession) Lookup(rawName string) (uuid.UUID, bool) {
	id, ok := s.resolved[sessionKey(rawName)]
	return id, ok
}

func (s *MatchSession) Remember(rawName string, staffID uuid.UUID) {
	key := sessionKey(rawName)
	if key == "" {
		return
	}
	s.resolved[key] = staffID
}

// Snapshot exports the resolution table for persistence between requests
// of the same session.
func (s *MatchSession) Snapshot() map[string]string {
	out := make(map[string]string, len(s.resolved))
	for name, id := range s.resolved {
		out[name] = id.String()
	}
	return out
}

// Restore merges a previously persisted resolution table into the session.
func (s *MatchSession) Restore(snapshot map[string]string) {
	for name, raw := range snapshot {
		if id, err := uuid.Parse(raw); err == nil {
			s.resolved[sessionKey(name)] = id
		}
	}
}
