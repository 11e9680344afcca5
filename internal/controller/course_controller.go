package controller

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/model"
	"github.com/coursehub/coursehub/internal/service"
)

// CourseController exposes the catalog, authoring, payment and vote routes.
type CourseController struct {
	courses service.CourseProvider
	logger  *zap.Logger
}

func NewCourseController(courses service.CourseProvider, logger *zap.Logger) *CourseController {
	return &CourseController{courses: courses, logger: logger}
}

// List handles GET /courses with search, page, orderby and ascending query
// parameters. Bad paging or sorting input is normalized, never rejected.
func (ctl *CourseController) List(c *fiber.Ctx) error {
	search := c.Query("search")
	page := c.QueryInt("page", 1)
	orderBy := c.Query("orderby")
	ascending := c.QueryBool("ascending", false)

	list, err := ctl.courses.ListCourses(c.Context(), search, page, orderBy, ascending)
	if err != nil {
		ctl.logger.Error("Course list failed", zap.Error(err))
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", list)
}

// Home handles GET /courses/home with the two landing-page carousels.
func (ctl *CourseController) Home(c *fiber.Ctx) error {
	recent, err := ctl.courses.GetMostRecentCourses(c.Context())
	if err != nil {
		ctl.logger.Error("Most recent courses failed", zap.Error(err))
		return ErrorResponse(c, err)
	}
	best, err := ctl.courses.GetBestRatingCourses(c.Context())
	if err != nil {
		ctl.logger.Error("Best rating courses failed", zap.Error(err))
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Home courses fetched successfully!", fiber.Map{
		"most_recent": recent,
		"best_rating": best,
	})
}

// Detail handles GET /courses/:id.
func (ctl *CourseController) Detail(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	detail, err := ctl.courses.GetCourse(c.Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", detail)
}

type createCourseRequest struct {
	Title string `json:"title" form:"title"`
}

// Create handles POST /courses for callers with the Teacher role.
func (ctl *CourseController) Create(c *fiber.Ctx) error {
	var req createCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}
	if req.Title == "" {
		return ValidationErrorResponse(c, map[string]string{"title": "title is required"})
	}

	course, err := ctl.courses.CreateCourse(c.Context(), CurrentIdentity(c), req.Title)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetForEditing handles GET /courses/:id/editing, returning the editable
// projection with its row version.
func (ctl *CourseController) GetForEditing(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	edit, err := ctl.courses.GetCourseForEditing(c.Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", edit)
}

type editCourseRequest struct {
	Title                string  `json:"title" form:"title"`
	Description          string  `json:"description" form:"description"`
	Email                string  `json:"email" form:"email"`
	FullPriceAmount      float64 `json:"full_price_amount" form:"full_price_amount"`
	FullPriceCurrency    string  `json:"full_price_currency" form:"full_price_currency"`
	CurrentPriceAmount   float64 `json:"current_price_amount" form:"current_price_amount"`
	CurrentPriceCurrency string  `json:"current_price_currency" form:"current_price_currency"`
	RowVersion           int64   `json:"row_version" form:"row_version"`
}

// Edit handles PUT /courses/:id. The body is JSON or multipart form data;
// the multipart form may carry a replacement cover under the "image" field.
func (ctl *CourseController) Edit(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	var req editCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}
	if req.Title == "" {
		return ValidationErrorResponse(c, map[string]string{"title": "title is required"})
	}

	edit := model.CourseEdit{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Email:        req.Email,
		FullPrice:    model.Money{Currency: model.Currency(req.FullPriceCurrency), Amount: req.FullPriceAmount},
		CurrentPrice: model.Money{Currency: model.Currency(req.CurrentPriceCurrency), Amount: req.CurrentPriceAmount},
		RowVersion:   req.RowVersion,
	}

	cover, closeCover, err := formImage(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"image": "could not read the uploaded image"})
	}
	if closeCover != nil {
		defer closeCover()
	}

	course, err := ctl.courses.EditCourse(c.Context(), edit, cover)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// Delete handles DELETE /courses/:id, a soft delete.
func (ctl *CourseController) Delete(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	if err := ctl.courses.DeleteCourse(c.Context(), id); err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// TitleAvailable handles GET /courses/title-available, the remote check the
// course forms call while the author types.
func (ctl *CourseController) TitleAvailable(c *fiber.Ctx) error {
	title := c.Query("title")
	if title == "" {
		return ValidationErrorResponse(c, map[string]string{"title": "title is required"})
	}
	excludeID := int64(c.QueryInt("exclude_id", 0))

	available, err := ctl.courses.IsTitleAvailable(c.Context(), title, excludeID)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Title availability checked!", fiber.Map{
		"available": available,
	})
}

type questionRequest struct {
	Question string `json:"question" form:"question"`
}

// AskQuestion handles POST /courses/:id/questions.
func (ctl *CourseController) AskQuestion(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	var req questionRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}
	if req.Question == "" {
		return ValidationErrorResponse(c, map[string]string{"question": "question is required"})
	}

	if err := ctl.courses.SendQuestionToCourseAuthor(c.Context(), CurrentIdentity(c), id, req.Question); err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Question sent to the author!", nil)
}

type payRequest struct {
	ReturnURL string `json:"return_url" form:"return_url"`
	CancelURL string `json:"cancel_url" form:"cancel_url"`
}

// Pay handles POST /courses/:id/payment and returns the provider approval URL.
func (ctl *CourseController) Pay(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.BaseURL() + "/courses/payment/capture"
	}
	if req.CancelURL == "" {
		req.CancelURL = c.BaseURL() + "/courses/" + strconv.FormatInt(id, 10)
	}

	approvalURL, err := ctl.courses.Pay(c.Context(), id, CurrentIdentity(c).UserID, req.ReturnURL, req.CancelURL)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Payment order created!", fiber.Map{
		"approval_url": approvalURL,
	})
}

// CapturePayment handles GET /courses/payment/capture?token=..., the redirect
// target the provider sends the buyer back to after approval.
func (ctl *CourseController) CapturePayment(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return ValidationErrorResponse(c, map[string]string{"token": "token is required"})
	}

	sub, err := ctl.courses.CapturePayment(c.Context(), token)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Payment captured, you are subscribed!", sub)
}

// GetSubscription handles GET /courses/:id/subscription for the caller's own
// subscription.
func (ctl *CourseController) GetSubscription(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	sub, err := ctl.courses.GetSubscription(c.Context(), CurrentIdentity(c).UserID, id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Subscription fetched successfully!", sub)
}

type voteRequest struct {
	Vote int `json:"vote" form:"vote"`
}

// Vote handles POST /courses/:id/vote on the caller's own subscription.
func (ctl *CourseController) Vote(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationErrorResponse(c, map[string]string{"body": "invalid request body"})
	}

	if err := ctl.courses.VoteCourse(c.Context(), CurrentIdentity(c).UserID, id, req.Vote); err != nil {
		return ErrorResponse(c, err)
	}
	return JsonResponse(c, fiber.StatusOK, true, "Vote recorded successfully!", nil)
}

// RequireCourseAuthor allows only the course author or an administrator
// through. The course id comes from the :id route parameter.
func (ctl *CourseController) RequireCourseAuthor(c *fiber.Ctx) error {
	id, err := courseID(c)
	if err != nil {
		return ValidationErrorResponse(c, map[string]string{"id": "must be a positive integer"})
	}

	identity := CurrentIdentity(c)
	if identity.HasRole(model.RoleAdministrator) {
		return c.Next()
	}

	authorID, err := ctl.courses.GetCourseAuthorID(c.Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	if authorID != identity.UserID {
		return JsonResponse(c, fiber.StatusForbidden, false, "Only the course author can do this", nil)
	}
	return c.Next()
}

// courseID parses the :id route parameter.
func courseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}

// formImage opens the optional multipart "image" field. A JSON body simply
// has no file, which is not an error.
func formImage(c *fiber.Ctx) (io.Reader, func(), error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil, nil
	}
	return openFormFile(fileHeader)
}

func openFormFile(fileHeader *multipart.FileHeader) (io.Reader, func(), error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}
