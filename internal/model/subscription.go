package model

import "time"

// Subscription records a user's paid access to a course. Vote is nil until
// the subscriber rates the course.
type Subscription struct {
	UserID        int64     `json:"user_id"`
	CourseID      int64     `json:"course_id"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentType   string    `json:"payment_type"`
	Paid          Money     `json:"paid"`
	TransactionID string    `json:"transaction_id"`
	Vote          *int      `json:"vote,omitempty"`
}
