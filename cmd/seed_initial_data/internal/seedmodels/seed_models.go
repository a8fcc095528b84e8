package seedmodels

// SeedChapter defines a chapter entry in the JSON seed file.
type SeedChapter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SeedSubject defines a subject entry in the JSON seed file.
type SeedSubject struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Chapters    []SeedChapter `json:"chapters"`
}
