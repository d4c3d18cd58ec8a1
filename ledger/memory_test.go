package ledger_test

import (
	"context"
	"testing"

	"github.com/gradevault/gradevault/ledger"
	"github.com/gradevault/gradevault/ledger/testkit"
)

func TestMemoryConformance(t *testing.T) {
	testkit.RunLedgerConformance(t, func(t *testing.T) ledger.Ledger {
		return ledger.NewMemory()
	})
}

func TestMemoryPreservesOriginalIdentityCasing(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory()

	k := ledger.SeriesKey{
		Teacher:      "0xTeAcHeR",
		Student:      "0xStUdEnT",
		EnrollmentID: "enr-1",
		CourseCode:   "CSE101",
		SemesterCode: "fall2025",
	}
	id, err := l.CreateSeries(ctx, k, "bafy-1", "initial")
	if err != nil {
		t.Fatalf("CreateSeries: %v", err)
	}

	// Lookups normalize, but the stored fields keep the submitted form.
	s, err := l.Describe(ctx, id)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if s.Teacher != "0xTeAcHeR" || s.Student != "0xStUdEnT" {
		t.Fatalf("identity casing not preserved: %+v", s)
	}
}

func TestMemoryCancelledContext(t *testing.T) {
	l := ledger.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.CreateSeries(ctx, ledger.SeriesKey{Teacher: "t", Student: "s"}, "bafy", "r"); err == nil {
		t.Fatalf("expected context error")
	}
}
