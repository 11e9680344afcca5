package model

import "time"

type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "Draft"
	CourseStatusPublished CourseStatus = "Published"
	CourseStatusDeleted   CourseStatus = "Deleted" // soft delete, row is kept
)

// DefaultImagePath is the cover shown until a teacher uploads one.
const DefaultImagePath = "/courses/default.png"

type Course struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ImagePath    string       `json:"image_path"`
	Author       string       `json:"author"`
	AuthorID     int64        `json:"author_id"`
	Email        string       `json:"email"`
	Rating       float64      `json:"rating"`
	FullPrice    Money        `json:"full_price"`
	CurrentPrice Money        `json:"current_price"`
	Status       CourseStatus `json:"status"`
	RowVersion   int64        `json:"row_version"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CourseDetail is a course together with its lessons, ordered for display.
type CourseDetail struct {
	Course
	Lessons []*Lesson `json:"lessons"`
}

// CourseEdit carries the editable fields plus the row version the editor
// read, threaded back through the update for the optimistic-concurrency
// check.
type CourseEdit struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ImagePath    string  `json:"image_path"`
	Email        string  `json:"email"`
	FullPrice    Money   `json:"full_price"`
	CurrentPrice Money   `json:"current_price"`
	RowVersion   int64   `json:"row_version"`
	Rating       float64 `json:"-"`
}

// CourseList is one page of catalog results.
type CourseList struct {
	Results    []*Course `json:"results"`
	TotalCount int       `json:"total_count"`
}
