package grade

import "testing"

func TestComputeGrade(t *testing.T) {
	cases := []struct {
		total  float64
		letter string
		points float64
	}{
		{100, "A+", 4.00},
		{80, "A+", 4.00},
		{79.99, "A", 3.75},
		{75, "A", 3.75},
		{70, "A-", 3.50},
		{65, "B+", 3.25},
		{60, "B", 3.00},
		{55, "B-", 2.75},
		{50, "C+", 2.50},
		{45, "C", 2.25},
		{40, "D", 2.00},
		{39.99, "F", 0},
		{0, "F", 0},
	}
	for _, c := range cases {
		letter, points := ComputeGrade(c.total)
		if letter != c.letter || points != c.points {
			t.Errorf("ComputeGrade(%v) = %q/%v, want %q/%v", c.total, letter, points, c.letter, c.points)
		}
	}
}

func TestBuildMarks(t *testing.T) {
	components := map[string]float64{
		"midterm":    22.5,
		"final":      41,
		"continuous": 14,
	}
	m := BuildMarks(components)

	if m.Total != 77.5 {
		t.Fatalf("Total = %v, want 77.5", m.Total)
	}
	if m.LetterGrade != "A" || m.GradePoints != 3.75 {
		t.Fatalf("grade = %q/%v, want A/3.75", m.LetterGrade, m.GradePoints)
	}

	// The original map is copied, not aliased.
	components["final"] = 0
	if m.Components["final"] != 41 {
		t.Fatalf("Components aliases the caller's map")
	}
}

func TestBuildMarksEmpty(t *testing.T) {
	m := BuildMarks(nil)
	if m.Total != 0 || m.LetterGrade != "F" || m.GradePoints != 0 {
		t.Fatalf("unexpected zero marks: %+v", m)
	}
	if m.Components == nil {
		t.Fatalf("Components should be an empty map, not nil")
	}
}
