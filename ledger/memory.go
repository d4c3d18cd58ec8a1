package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gradevault/gradevault/identity"
)

// Memory is an in-process Ledger.
//
// A single mutex serializes writers; per-series state is small enough that
// finer-grained locking buys nothing here. Version slices are append-only,
// and returned records are values, so readers can never observe a mutation.
type Memory struct {
	mu     sync.RWMutex
	series map[string]*memSeries
	byKey  map[SeriesKey]string
}

type memSeries struct {
	Series
	versions []VersionRecord
}

var _ Ledger = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		series: make(map[string]*memSeries),
		byKey:  make(map[SeriesKey]string),
	}
}

func normalizeKey(key SeriesKey) SeriesKey {
	return SeriesKey{
		Teacher:      identity.Normalize(key.Teacher),
		Student:      identity.Normalize(key.Student),
		EnrollmentID: key.EnrollmentID,
		CourseCode:   key.CourseCode,
		SemesterCode: key.SemesterCode,
	}
}

func (m *Memory) CreateSeries(ctx context.Context, key SeriesKey, contentID, reason string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	norm := normalizeKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byKey[norm]; exists {
		return "", ErrAlreadyExists
	}

	id := uuid.NewString()
	s := &memSeries{
		Series: Series{
			SeriesID:       id,
			Teacher:        key.Teacher,
			Student:        key.Student,
			EnrollmentID:   key.EnrollmentID,
			CourseCode:     key.CourseCode,
			SemesterCode:   key.SemesterCode,
			CurrentVersion: 1,
		},
		versions: []VersionRecord{{
			VersionNumber: 1,
			ContentID:     contentID,
			Timestamp:     time.Now().UTC(),
			Editor:        key.Teacher,
			Reason:        reason,
		}},
	}
	m.series[id] = s
	m.byKey[norm] = id
	return id, nil
}

func (m *Memory) AppendVersion(ctx context.Context, seriesID, editor, contentID, reason string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.series[seriesID]
	if !ok {
		return 0, ErrUnknownSeries
	}
	if !identity.Equal(editor, s.Teacher) {
		return 0, ErrUnauthorized
	}

	next := s.CurrentVersion + 1
	s.versions = append(s.versions, VersionRecord{
		VersionNumber: next,
		ContentID:     contentID,
		Timestamp:     time.Now().UTC(),
		Editor:        editor,
		Reason:        reason,
	})
	s.CurrentVersion = next
	return next, nil
}

func (m *Memory) FindSeries(ctx context.Context, key SeriesKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKey[normalizeKey(key)]
	if !ok {
		return "", ErrUnknownSeries
	}
	return id, nil
}

func (m *Memory) Describe(ctx context.Context, seriesID string) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[seriesID]
	if !ok {
		return Series{}, ErrUnknownSeries
	}
	return s.Series, nil
}

func (m *Memory) Head(ctx context.Context, seriesID string) (VersionRecord, error) {
	if err := ctx.Err(); err != nil {
		return VersionRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[seriesID]
	if !ok {
		return VersionRecord{}, ErrUnknownSeries
	}
	return s.versions[len(s.versions)-1], nil
}

func (m *Memory) Version(ctx context.Context, seriesID string, index int) (VersionRecord, error) {
	if err := ctx.Err(); err != nil {
		return VersionRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[seriesID]
	if !ok {
		return VersionRecord{}, ErrUnknownSeries
	}
	if index < 0 || index >= len(s.versions) {
		return VersionRecord{}, ErrIndexOutOfRange
	}
	return s.versions[index], nil
}

func (m *Memory) VersionCount(ctx context.Context, seriesID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[seriesID]
	if !ok {
		return 0, ErrUnknownSeries
	}
	return len(s.versions), nil
}

func (m *Memory) ListByStudent(ctx context.Context, student string) ([]string, error) {
	return m.list(ctx, func(s *memSeries) bool { return identity.Equal(s.Student, student) })
}

func (m *Memory) ListByTeacher(ctx context.Context, teacher string) ([]string, error) {
	return m.list(ctx, func(s *memSeries) bool { return identity.Equal(s.Teacher, teacher) })
}

func (m *Memory) list(ctx context.Context, match func(*memSeries) bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for id, s := range m.series {
		if match(s) {
			out = append(out, id)
		}
	}
	// Map iteration order is nondeterministic; keep listings stable.
	sort.Strings(out)
	return out, nil
}
