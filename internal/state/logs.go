package state

import "github.com/atomicstack/unit-control/internal/systemd"

// LogStore keeps one ordered line buffer per unit. Buffers are append-only
// until replaced by Set.
type LogStore interface {
	Lines(id systemd.UnitID) []string
	Len(id systemd.UnitID) int
	Set(id systemd.UnitID, lines []string)
	Append(id systemd.UnitID, line string)
	Drop(id systemd.UnitID)
}

type logStore struct {
	buffers map[systemd.UnitID][]string
	limit   int
}

// NewLogStore creates a store that keeps at most limit lines per unit; a
// non-positive limit keeps everything.
func NewLogStore(limit int) LogStore {
	return &logStore{buffers: make(map[systemd.UnitID][]string), limit: limit}
}

func (s *logStore) Lines(id systemd.UnitID) []string {
	return cloneLines(s.buffers[id])
}

func (s *logStore) Len(id systemd.UnitID) int {
	return len(s.buffers[id])
}

func (s *logStore) Set(id systemd.UnitID, lines []string) {
	s.buffers[id] = s.trim(cloneLines(lines))
}

func (s *logStore) Append(id systemd.UnitID, line string) {
	s.buffers[id] = s.trim(append(s.buffers[id], line))
}

func (s *logStore) Drop(id systemd.UnitID) {
	delete(s.buffers, id)
}

func (s *logStore) trim(lines []string) []string {
	if s.limit <= 0 || len(lines) <= s.limit {
		return lines
	}
	return cloneLines(lines[len(lines)-s.limit:])
}

func cloneLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]string, len(lines))
	copy(dup, lines)
	return dup
}
