package types

// Course describes one course as returned by the learning API: ordered
// chapters plus a flat list of downloadable exercise files. A Course is built
// once per run and never mutated afterwards; all fetch progress lives on disk.
type Course struct {
	Name        string
	Slug        string
	Description string
	Unlocked    bool
	Chapters    []Chapter
	Exercises   []Exercise
}

// Chapter groups the videos of one course section. Index is 1-based and
// matches the API array position.
type Chapter struct {
	Name   string
	Index  int
	Videos []Video
}

// Video describes a single lesson video. Slug is the platform identifier used
// to request the media URL. Filename is derived from the 1-based index and
// the sanitized title, so it is stable across runs.
type Video struct {
	Name     string
	Slug     string
	Index    int
	Filename string
}

// Exercise describes one downloadable attachment of a course. Exercises are
// not grouped under chapters; Course carries the owning course name.
type Exercise struct {
	Name   string
	URL    string
	Course string
	Index  int
}

// TranscriptLine is one timed caption line of a video transcript.
type TranscriptLine struct {
	StartAt int64  `json:"transcriptStartAt"`
	Caption string `json:"caption"`
}
