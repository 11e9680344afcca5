package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/database"
	"github.com/coursehub/coursehub/internal/model"
)

// SortColumn is the allow-listed set of catalog sort keys. Only values of
// this type are ever spliced into ORDER BY, which keeps user input out of
// the raw SQL path.
type SortColumn string

const (
	SortByID           SortColumn = "Id"
	SortByTitle        SortColumn = "Title"
	SortByRating       SortColumn = "Rating"
	SortByCurrentPrice SortColumn = "CurrentPrice"
)

func (c SortColumn) column() database.Raw {
	switch c {
	case SortByID:
		return "id"
	case SortByTitle:
		return "title"
	case SortByCurrentPrice:
		return "current_price_amount"
	default:
		return "rating"
	}
}

func direction(ascending bool) database.Raw {
	if ascending {
		return "ASC"
	}
	return "DESC"
}

const courseColumns = `id, title, description, image_path, author, author_id, email, rating,
		full_price_amount, full_price_currency, current_price_amount, current_price_currency,
		status, row_version, created_at`

type CourseRepository struct {
	db     *database.Accessor
	logger *zap.Logger
}

func NewCourseRepository(db *database.Accessor, logger *zap.Logger) *CourseRepository {
	return &CourseRepository{db: db, logger: logger}
}

// List returns one catalog page plus the total match count. Soft-deleted
// courses are always excluded.
func (r *CourseRepository) List(ctx context.Context, search string, sort SortColumn, ascending bool, limit, offset int) ([]*model.Course, int, error) {
	pattern := "%" + search + "%"

	q := database.New(`
		SELECT `+courseColumns+`
		FROM courses
		WHERE title ILIKE ? AND status <> ?
		ORDER BY ? ?, id
		LIMIT ? OFFSET ?`,
		pattern, string(model.CourseStatusDeleted), sort.column(), direction(ascending), limit, offset)

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	count := database.New(
		"SELECT COUNT(*) FROM courses WHERE title ILIKE ? AND status <> ?",
		pattern, string(model.CourseStatusDeleted))
	total, err := database.Scalar[int](ctx, r.db, count)
	if err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// GetByID returns a course or apperror.ErrNotFound when the row is absent
// or soft-deleted.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	q := database.New(
		"SELECT "+courseColumns+" FROM courses WHERE id = ? AND status <> ?",
		id, string(model.CourseStatusDeleted))

	course, err := scanCourse(func(dest ...any) error {
		return r.db.QueryRow(ctx, q).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}
	return course, nil
}

// Create inserts a draft course with default image and zero prices. A
// duplicate title surfaces as apperror.ErrConstraintViolation.
func (r *CourseRepository) Create(ctx context.Context, title, author string, authorID int64) (int64, error) {
	q := database.New(`
		INSERT INTO courses (title, author, author_id, image_path, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		title, author, authorID, model.DefaultImagePath, string(model.CourseStatusDraft))

	var id int64
	if err := r.db.QueryRow(ctx, q).Scan(&id); err != nil {
		r.logger.Error("Failed to insert course",
			zap.String("title", title),
			zap.Int64("author_id", authorID),
			zap.Error(err))
		return 0, fmt.Errorf("create course: %w", err)
	}

	r.logger.Info("Course created",
		zap.Int64("course_id", id),
		zap.String("title", title),
		zap.Int64("author_id", authorID))
	return id, nil
}

// Update applies an edit guarded by the expected row version and bumps the
// version on success. imagePath is optional; nil keeps the current cover.
// Returns the affected row count so the caller can disambiguate zero into
// not-found vs concurrency conflict.
func (r *CourseRepository) Update(ctx context.Context, edit model.CourseEdit, imagePath *string) (int64, error) {
	q := database.New(`
		UPDATE courses
		SET image_path = COALESCE(?, image_path),
		    title = ?, description = ?, email = ?,
		    full_price_amount = ?, full_price_currency = ?,
		    current_price_amount = ?, current_price_currency = ?,
		    row_version = row_version + 1
		WHERE id = ? AND status <> ? AND row_version = ?`,
		imagePath,
		edit.Title, edit.Description, edit.Email,
		edit.FullPrice.Amount, string(edit.FullPrice.Currency),
		edit.CurrentPrice.Amount, string(edit.CurrentPrice.Currency),
		edit.ID, string(model.CourseStatusDeleted), edit.RowVersion)

	affected, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("update course %d: %w", edit.ID, err)
	}
	return affected, nil
}

// Exists reports whether a non-deleted course row is present, used to tell
// a vanished course apart from a row-version conflict.
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	q := database.New(
		"SELECT COUNT(*) FROM courses WHERE id = ? AND status <> ?",
		id, string(model.CourseStatusDeleted))
	count, err := database.Scalar[int](ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("course exists %d: %w", id, err)
	}
	return count > 0, nil
}

// SoftDelete flips the course status to Deleted; the row is kept.
func (r *CourseRepository) SoftDelete(ctx context.Context, id int64) (int64, error) {
	q := database.New(
		"UPDATE courses SET status = ? WHERE id = ? AND status <> ?",
		string(model.CourseStatusDeleted), id, string(model.CourseStatusDeleted))
	affected, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("delete course %d: %w", id, err)
	}
	if affected > 0 {
		r.logger.Info("Course soft-deleted", zap.Int64("course_id", id))
	}
	return affected, nil
}

// AuthorID answers the course-author authorization lookup.
func (r *CourseRepository) AuthorID(ctx context.Context, courseID int64) (int64, error) {
	q := database.New(
		"SELECT author_id FROM courses WHERE id = ? AND status <> ?",
		courseID, string(model.CourseStatusDeleted))
	authorID, err := database.Scalar[int64](ctx, r.db, q)
	if err != nil {
		return 0, fmt.Errorf("get course author %d: %w", courseID, err)
	}
	return authorID, nil
}

// CountByAuthor counts the author's non-deleted courses for the
// course-limit policy.
func (r *CourseRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	q := database.New(
		"SELECT COUNT(*) FROM courses WHERE author_id = ? AND status <> ?",
		authorID, string(model.CourseStatusDeleted))
	count, err := database.Scalar[int](ctx, r.db, q)
	if err != nil {
		return 0, fmt.Errorf("count courses by author %d: %w", authorID, err)
	}
	return count, nil
}

// TitleAvailable reports whether a title is free among non-deleted courses,
// ignoring the course being edited.
func (r *CourseRepository) TitleAvailable(ctx context.Context, title string, excludeID int64) (bool, error) {
	q := database.New(
		"SELECT COUNT(*) FROM courses WHERE LOWER(title) = LOWER(?) AND id <> ? AND status <> ?",
		title, excludeID, string(model.CourseStatusDeleted))
	count, err := database.Scalar[int](ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("title available: %w", err)
	}
	return count == 0, nil
}

// UpdateImagePath stores a freshly persisted cover path.
func (r *CourseRepository) UpdateImagePath(ctx context.Context, courseID int64, imagePath string) error {
	q := database.New(
		"UPDATE courses SET image_path = ? WHERE id = ? AND status <> ?",
		imagePath, courseID, string(model.CourseStatusDeleted))
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("update image path %d: %w", courseID, err)
	}
	return nil
}

// RecomputeRatings refreshes every course rating from the subscription
// votes. Run periodically in the background.
func (r *CourseRepository) RecomputeRatings(ctx context.Context) (int64, error) {
	q := database.New(`
		UPDATE courses
		SET rating = COALESCE((
			SELECT AVG(vote)::DOUBLE PRECISION
			FROM subscriptions
			WHERE subscriptions.course_id = courses.id AND vote IS NOT NULL
		), 0)
		WHERE status <> ?`,
		string(model.CourseStatusDeleted))

	affected, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("recompute ratings: %w", err)
	}
	return affected, nil
}

// scanCourse assembles a course from the courseColumns projection.
func scanCourse(scan func(dest ...any) error) (*model.Course, error) {
	var course model.Course
	var fullCurrency, currentCurrency, status string
	err := scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.ImagePath,
		&course.Author,
		&course.AuthorID,
		&course.Email,
		&course.Rating,
		&course.FullPrice.Amount,
		&fullCurrency,
		&course.CurrentPrice.Amount,
		&currentCurrency,
		&status,
		&course.RowVersion,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	course.FullPrice.Currency = model.Currency(fullCurrency)
	course.CurrentPrice.Currency = model.Currency(currentCurrency)
	course.Status = model.CourseStatus(status)
	return &course, nil
}
