package models

import "time"

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Lesson is stored embedded in the course row as JSON, so its tags are the storage format.
type Lesson struct {
	Title       string `json:"title" validate:"required"`
	ContentHTML string `json:"contentHtml,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Order       int    `json:"order"`
}

type Course struct {
	ID           string
	Title        string
	Slug         string
	Description  string
	Price        float64
	Category     string
	Difficulty   Difficulty
	ThumbnailURL *string
	Lessons      []Lesson
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
