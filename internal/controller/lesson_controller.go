package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/model"
	"github.com/coursehub/coursehub/internal/service"
)

// LessonController exposes the lesson authoring routes.
type LessonController struct {
	lessons service.LessonProvider
	courses service.CourseProvider
	logger  *zap.Logger
}

func NewLessonController(lessons service.LessonProvider, courses service.CourseProvider, logger *zap.Logger) *LessonController {
	return &LessonController{lessons: lessons, courses: courses, logger: logger}
}

// Get handles GET /lessons/:id.
func (ctl *LessonController) Get(c *fiber.Ctx) error {
	id, err := lessonID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	lesson, err := ctl.lessons.GetLesson(c.Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}

type createLessonRequest struct {
	Title string `json:"title" form:"title"`
}

// Create handles POST /courses/:id/lessons. Route guards already checked
// the caller is the course author.
func (ctl *LessonController) Create(c *fiber.Ctx) error {
	courseID, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	var req createLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}
	if req.Title == "" {
		return ValidationErrorResponse(c, map[string]string{"title": "title is required"})
	}

	lesson, err := ctl.lessons.CreateLesson(c.Context(), courseID, req.Title)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// GetForEditing handles GET /lessons/:id/editing.
func (ctl *LessonController) GetForEditing(c *fiber.Ctx) error {
	id, err := lessonID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	lesson, err := ctl.lessons.GetLessonForEditing(c.Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}

type editLessonRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Duration    int    `json:"duration_minutes" form:"duration_minutes"`
	Order       int    `json:"order" form:"order"`
	RowVersion  int64  `json:"row_version" form:"row_version"`
}

// Edit handles PUT /lessons/:id.
func (ctl *LessonController) Edit(c *fiber.Ctx) error {
	id, err := lessonID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	var req editLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}
	if req.Title == "" {
		return ValidationErrorResponse(c, map[string]string{"title": "title is required"})
	}

	lesson := &model.Lesson{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Order:       req.Order,
		RowVersion:  req.RowVersion,
	}

	updated, err := ctl.lessons.EditLesson(c.Context(), lesson)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", updated)
}

// Delete handles DELETE /lessons/:id.
func (ctl *LessonController) Delete(c *fiber.Ctx) error {
	id, err := lessonID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	if err := ctl.lessons.DeleteLesson(c.Context(), id); err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// RequireLessonCourseAuthor allows only the author of the lesson's course
// (or an administrator) through.
func (ctl *LessonController) RequireLessonCourseAuthor(c *fiber.Ctx) error {
	id, err := lessonID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	identity := CurrentIdentity(c)
	if identity.HasRole(model.RoleAdministrator) {
		return c.Next()
	}

	lesson, err := ctl.lessons.GetLesson(c.Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	authorID, err := ctl.courses.GetCourseAuthorID(c.Context(), lesson.CourseID)
	if err != nil {
		return ErrorResponse(c, err)
	}
	if authorID != identity.UserID {
		return JsonResponse(c, fiber.StatusForbidden, false, "Only the course author can do this", nil)
	}
	return c.Next()
}

func lessonID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
