package grade

import "time"

// Marks is the assessment breakdown carried inside an envelope payload.
type Marks struct {
	Components  map[string]float64 `json:"components"`
	Total       float64            `json:"total"`
	LetterGrade string             `json:"letterGrade"`
	GradePoints float64            `json:"gradePoints"`
}

// MarksPayload is the decrypted payload schema stored at a content id.
type MarksPayload struct {
	EnrollmentID string    `json:"enrollmentId"`
	Marks        Marks     `json:"marks"`
	ComputedAt   time.Time `json:"computedAt"`
}

// gradeBands maps a total score (out of 100) to letter grade and grade
// points on the UGC uniform grading scale.
var gradeBands = []struct {
	min    float64
	letter string
	points float64
}{
	{80, "A+", 4.00},
	{75, "A", 3.75},
	{70, "A-", 3.50},
	{65, "B+", 3.25},
	{60, "B", 3.00},
	{55, "B-", 2.75},
	{50, "C+", 2.50},
	{45, "C", 2.25},
	{40, "D", 2.00},
}

// ComputeGrade returns the letter grade and grade points for a total score.
func ComputeGrade(total float64) (string, float64) {
	for _, band := range gradeBands {
		if total >= band.min {
			return band.letter, band.points
		}
	}
	return "F", 0.00
}

// SumComponents totals the component scores.
func SumComponents(components map[string]float64) float64 {
	var total float64
	for _, v := range components {
		total += v
	}
	return total
}

// BuildMarks assembles a Marks value from raw component scores, deriving
// total, letter grade and grade points.
func BuildMarks(components map[string]float64) Marks {
	total := SumComponents(components)
	letter, points := ComputeGrade(total)
	cp := make(map[string]float64, len(components))
	for k, v := range components {
		cp[k] = v
	}
	return Marks{
		Components:  cp,
		Total:       total,
		LetterGrade: letter,
		GradePoints: points,
	}
}
