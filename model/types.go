package model

import "time"

// Marks is the assessment breakdown carried in submissions and views.
type Marks struct {
	Components  map[string]float64 `json:"components"`
	Total       float64            `json:"total"`
	LetterGrade string             `json:"letterGrade"`
	GradePoints float64            `json:"gradePoints"`
}

// SubmitRequest carries one grade submission or correction.
type SubmitRequest struct {
	Teacher      string `json:"teacher"`
	Student      string `json:"student"`
	EnrollmentID string `json:"enrollmentId"`
	CourseCode   string `json:"courseCode"`
	SemesterCode string `json:"semesterCode"`
	Marks        Marks  `json:"marks"`
	Reason       string `json:"reason"`
}

// SubmitResponse reports where the committed version landed.
type SubmitResponse struct {
	SeriesID      string `json:"seriesId"`
	ContentID     string `json:"contentId"`
	VersionNumber int    `json:"versionNumber"`
}

// SeriesHead is the series head metadata exposed without decryption.
type SeriesHead struct {
	SeriesID       string    `json:"seriesId"`
	CourseCode     string    `json:"courseCode"`
	SemesterCode   string    `json:"semesterCode"`
	CurrentVersion int       `json:"currentVersion"`
	HeadContentID  string    `json:"headContentId"`
	HeadTimestamp  time.Time `json:"headTimestamp"`
	HeadReason     string    `json:"headReason"`
}

// VersionEntry is one row of a series history listing.
type VersionEntry struct {
	VersionNumber int       `json:"versionNumber"`
	ContentID     string    `json:"contentId"`
	Timestamp     time.Time `json:"timestamp"`
	Editor        string    `json:"editor"`
	Reason        string    `json:"reason"`
}

// ViewResponse is a decrypted version as surfaced to a viewer.
type ViewResponse struct {
	SeriesID      string    `json:"seriesId"`
	VersionNumber int       `json:"versionNumber"`
	EnrollmentID  string    `json:"enrollmentId"`
	Marks         Marks     `json:"marks"`
	ComputedAt    time.Time `json:"computedAt"`
}

// SeriesListing is the set of series ids where an identity holds a role.
type SeriesListing struct {
	Identity  string   `json:"identity"`
	Role      string   `json:"role"`
	SeriesIDs []string `json:"seriesIds"`
}
