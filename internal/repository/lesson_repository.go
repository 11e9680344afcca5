package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/database"
	"github.com/coursehub/coursehub/internal/model"
)

const lessonColumns = "id, course_id, title, description, duration_minutes, sort_order, row_version, created_at"

type LessonRepository struct {
	db     *database.Accessor
	logger *zap.Logger
}

func NewLessonRepository(db *database.Accessor, logger *zap.Logger) *LessonRepository {
	return &LessonRepository{db: db, logger: logger}
}

// GetByID returns a lesson or apperror.ErrNotFound.
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	q := database.New("SELECT "+lessonColumns+" FROM lessons WHERE id = ?", id)

	lesson, err := scanLesson(func(dest ...any) error {
		return r.db.QueryRow(ctx, q).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("get lesson %d: %w", id, err)
	}
	return lesson, nil
}

// ListByCourseID returns a course's lessons in display order.
func (r *LessonRepository) ListByCourseID(ctx context.Context, courseID int64) ([]*model.Lesson, error) {
	q := database.New(
		"SELECT "+lessonColumns+" FROM lessons WHERE course_id = ? ORDER BY sort_order, id",
		courseID)

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list lessons for course %d: %w", courseID, err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lessons for course %d: %w", courseID, err)
	}
	return lessons, nil
}

// Create inserts a lesson at the default sort position.
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	if lesson.Order == 0 {
		lesson.Order = model.DefaultLessonOrder
	}

	q := database.New(`
		INSERT INTO lessons (course_id, title, description, duration_minutes, sort_order)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, row_version, created_at`,
		lesson.CourseID, lesson.Title, lesson.Description, lesson.Duration, lesson.Order)

	if err := r.db.QueryRow(ctx, q).Scan(&lesson.ID, &lesson.RowVersion, &lesson.CreatedAt); err != nil {
		r.logger.Error("Failed to insert lesson",
			zap.Int64("course_id", lesson.CourseID),
			zap.String("title", lesson.Title),
			zap.Error(err))
		return fmt.Errorf("create lesson: %w", err)
	}

	r.logger.Info("Lesson created",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("course_id", lesson.CourseID))
	return nil
}

// Update applies an edit guarded by the expected row version. Returns the
// affected count for not-found vs conflict disambiguation.
func (r *LessonRepository) Update(ctx context.Context, lesson *model.Lesson) (int64, error) {
	q := database.New(`
		UPDATE lessons
		SET title = ?, description = ?, duration_minutes = ?, sort_order = ?,
		    row_version = row_version + 1
		WHERE id = ? AND row_version = ?`,
		lesson.Title, lesson.Description, lesson.Duration, lesson.Order,
		lesson.ID, lesson.RowVersion)

	affected, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("update lesson %d: %w", lesson.ID, err)
	}
	return affected, nil
}

// Exists reports whether the lesson row is present.
func (r *LessonRepository) Exists(ctx context.Context, id int64) (bool, error) {
	q := database.New("SELECT COUNT(*) FROM lessons WHERE id = ?", id)
	count, err := database.Scalar[int](ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("lesson exists %d: %w", id, err)
	}
	return count > 0, nil
}

// Delete removes a lesson row.
func (r *LessonRepository) Delete(ctx context.Context, id int64) (int64, error) {
	q := database.New("DELETE FROM lessons WHERE id = ?", id)
	affected, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("delete lesson %d: %w", id, err)
	}
	return affected, nil
}

func scanLesson(scan func(dest ...any) error) (*model.Lesson, error) {
	var lesson model.Lesson
	err := scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Description,
		&lesson.Duration,
		&lesson.Order,
		&lesson.RowVersion,
		&lesson.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
