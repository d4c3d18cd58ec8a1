// Package testkit runs conformance checks against Ledger implementations.
package testkit

import (
	"context"
	"sync"
	"testing"

	"github.com/gradevault/gradevault/ledger"
)

// NewLedger constructs a fresh, empty ledger instance for a test.
// The returned ledger MUST be isolated from other tests.
type NewLedger func(t *testing.T) ledger.Ledger

func key(n string) ledger.SeriesKey {
	return ledger.SeriesKey{
		Teacher:      "0xTeacher-" + n,
		Student:      "0xStudent-" + n,
		EnrollmentID: "enr-" + n,
		CourseCode:   "CSE101",
		SemesterCode: "fall2025",
	}
}

// RunLedgerConformance exercises the Ledger contract: creation uniqueness,
// owner-only appends, gap-free ordering, immutable history, and
// participant listings.
func RunLedgerConformance(t *testing.T, newLedger NewLedger) {
	t.Helper()
	ctx := context.Background()

	t.Run("CreateInitializesVersionOne", func(t *testing.T) {
		l := newLedger(t)
		id, err := l.CreateSeries(ctx, key("a"), "bafy-c1", "initial submission")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}

		s, err := l.Describe(ctx, id)
		if err != nil {
			t.Fatalf("Describe: %v", err)
		}
		if s.CurrentVersion != 1 {
			t.Fatalf("CurrentVersion = %d, want 1", s.CurrentVersion)
		}

		head, err := l.Head(ctx, id)
		if err != nil {
			t.Fatalf("Head: %v", err)
		}
		if head.VersionNumber != 1 || head.ContentID != "bafy-c1" {
			t.Fatalf("unexpected head: %+v", head)
		}
		if head.Editor != key("a").Teacher {
			t.Fatalf("head editor = %q, want teacher", head.Editor)
		}
		if head.Timestamp.IsZero() {
			t.Fatalf("head timestamp not set")
		}
	})

	t.Run("CreateDuplicateFails", func(t *testing.T) {
		l := newLedger(t)
		if _, err := l.CreateSeries(ctx, key("d"), "bafy-1", "r"); err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}
		if _, err := l.CreateSeries(ctx, key("d"), "bafy-2", "r"); err != ledger.ErrAlreadyExists {
			t.Fatalf("duplicate create: got %v want ErrAlreadyExists", err)
		}

		// Equivalence is decided on normalized identities.
		k := key("d")
		k.Teacher = "0XTEACHER-D"
		k.Student = "0xstudent-D"
		if _, err := l.CreateSeries(ctx, k, "bafy-3", "r"); err != ledger.ErrAlreadyExists {
			t.Fatalf("duplicate create with different casing: got %v want ErrAlreadyExists", err)
		}
	})

	t.Run("AppendAdvancesHead", func(t *testing.T) {
		l := newLedger(t)
		k := key("b")
		id, err := l.CreateSeries(ctx, k, "bafy-c1", "initial")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}

		n, err := l.AppendVersion(ctx, id, k.Teacher, "bafy-c2", "recount")
		if err != nil {
			t.Fatalf("AppendVersion: %v", err)
		}
		if n != 2 {
			t.Fatalf("AppendVersion = %d, want 2", n)
		}

		head, err := l.Head(ctx, id)
		if err != nil {
			t.Fatalf("Head: %v", err)
		}
		if head.VersionNumber != 2 || head.ContentID != "bafy-c2" || head.Reason != "recount" {
			t.Fatalf("unexpected head: %+v", head)
		}

		// History stays immutable.
		v0, err := l.Version(ctx, id, 0)
		if err != nil {
			t.Fatalf("Version(0): %v", err)
		}
		if v0.VersionNumber != 1 || v0.ContentID != "bafy-c1" {
			t.Fatalf("version 0 changed after append: %+v", v0)
		}

		count, err := l.VersionCount(ctx, id)
		if err != nil {
			t.Fatalf("VersionCount: %v", err)
		}
		if count != head.VersionNumber {
			t.Fatalf("VersionCount=%d != head version=%d", count, head.VersionNumber)
		}
	})

	t.Run("AppendAuthorization", func(t *testing.T) {
		l := newLedger(t)
		k := key("c")
		id, err := l.CreateSeries(ctx, k, "bafy-c1", "initial")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}

		if _, err := l.AppendVersion(ctx, id, k.Student, "bafy-x", "not mine"); err != ledger.ErrUnauthorized {
			t.Fatalf("append as student: got %v want ErrUnauthorized", err)
		}
		if _, err := l.AppendVersion(ctx, id, "0xIntruder", "bafy-x", "hostile"); err != ledger.ErrUnauthorized {
			t.Fatalf("append as intruder: got %v want ErrUnauthorized", err)
		}
		count, err := l.VersionCount(ctx, id)
		if err != nil {
			t.Fatalf("VersionCount: %v", err)
		}
		if count != 1 {
			t.Fatalf("failed appends mutated version count: %d", count)
		}

		// The teacher's identity matches regardless of casing.
		if _, err := l.AppendVersion(ctx, id, "0XTEACHER-C", "bafy-c2", "recased"); err != nil {
			t.Fatalf("append with recased teacher: %v", err)
		}
	})

	t.Run("UnknownSeries", func(t *testing.T) {
		l := newLedger(t)
		if _, err := l.AppendVersion(ctx, "no-such-id", "0xT", "bafy", "r"); err != ledger.ErrUnknownSeries {
			t.Fatalf("append: got %v want ErrUnknownSeries", err)
		}
		if _, err := l.Head(ctx, "no-such-id"); err != ledger.ErrUnknownSeries {
			t.Fatalf("head: got %v want ErrUnknownSeries", err)
		}
		if _, err := l.Describe(ctx, "no-such-id"); err != ledger.ErrUnknownSeries {
			t.Fatalf("describe: got %v want ErrUnknownSeries", err)
		}
		if _, err := l.FindSeries(ctx, key("zz")); err != ledger.ErrUnknownSeries {
			t.Fatalf("find: got %v want ErrUnknownSeries", err)
		}
	})

	t.Run("VersionIndexBounds", func(t *testing.T) {
		l := newLedger(t)
		k := key("e")
		id, err := l.CreateSeries(ctx, k, "bafy-c1", "initial")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}
		if _, err := l.Version(ctx, id, 1); err != ledger.ErrIndexOutOfRange {
			t.Fatalf("Version(1): got %v want ErrIndexOutOfRange", err)
		}
		if _, err := l.Version(ctx, id, -1); err != ledger.ErrIndexOutOfRange {
			t.Fatalf("Version(-1): got %v want ErrIndexOutOfRange", err)
		}
	})

	t.Run("FindSeries", func(t *testing.T) {
		l := newLedger(t)
		k := key("f")
		id, err := l.CreateSeries(ctx, k, "bafy-c1", "initial")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}
		found, err := l.FindSeries(ctx, k)
		if err != nil {
			t.Fatalf("FindSeries: %v", err)
		}
		if found != id {
			t.Fatalf("FindSeries = %q, want %q", found, id)
		}
	})

	t.Run("ListingsMatchRoleExactly", func(t *testing.T) {
		l := newLedger(t)
		k1 := key("g1")
		k2 := key("g2")
		k2.Teacher = k1.Teacher // same teacher, different student
		id1, err := l.CreateSeries(ctx, k1, "bafy-1", "r")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}
		id2, err := l.CreateSeries(ctx, k2, "bafy-2", "r")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}

		teaching, err := l.ListByTeacher(ctx, k1.Teacher)
		if err != nil {
			t.Fatalf("ListByTeacher: %v", err)
		}
		if len(teaching) != 2 {
			t.Fatalf("ListByTeacher = %v, want both series", teaching)
		}

		enrolled, err := l.ListByStudent(ctx, k1.Student)
		if err != nil {
			t.Fatalf("ListByStudent: %v", err)
		}
		if len(enrolled) != 1 || enrolled[0] != id1 {
			t.Fatalf("ListByStudent = %v, want [%s]", enrolled, id1)
		}

		// A teacher identity never matches the student listing.
		asStudent, err := l.ListByStudent(ctx, k1.Teacher)
		if err != nil {
			t.Fatalf("ListByStudent(teacher): %v", err)
		}
		if len(asStudent) != 0 {
			t.Fatalf("teacher appeared in student listing: %v", asStudent)
		}
		_ = id2
	})

	t.Run("ConcurrentAppendsAreGapFree", func(t *testing.T) {
		l := newLedger(t)
		k := key("h")
		id, err := l.CreateSeries(ctx, k, "bafy-c1", "initial")
		if err != nil {
			t.Fatalf("CreateSeries: %v", err)
		}

		const writers = 8
		var wg sync.WaitGroup
		nums := make(chan int, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := l.AppendVersion(ctx, id, k.Teacher, "bafy-concurrent", "race")
				if err != nil {
					t.Errorf("AppendVersion: %v", err)
					return
				}
				nums <- n
			}()
		}
		wg.Wait()
		close(nums)

		seen := make(map[int]bool)
		for n := range nums {
			if seen[n] {
				t.Fatalf("duplicate version number %d", n)
			}
			seen[n] = true
		}
		for want := 2; want <= writers+1; want++ {
			if !seen[want] {
				t.Fatalf("missing version number %d", want)
			}
		}

		head, err := l.Head(ctx, id)
		if err != nil {
			t.Fatalf("Head: %v", err)
		}
		if head.VersionNumber != writers+1 {
			t.Fatalf("head = %d, want %d", head.VersionNumber, writers+1)
		}
	})
}
