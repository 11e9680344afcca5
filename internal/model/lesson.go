package model

import "time"

// DefaultLessonOrder places new lessons after every explicitly ordered one.
const DefaultLessonOrder = 1000

type Lesson struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    int       `json:"duration_minutes"`
	Order       int       `json:"order"`
	RowVersion  int64     `json:"row_version"`
	CreatedAt   time.Time `json:"created_at"`
}
