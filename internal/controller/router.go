package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/coursehub/coursehub/internal/config"
	"github.com/coursehub/coursehub/internal/model"
)

// NewRouter assembles the fiber application: global middleware, the static
// cover directory and every course and lesson route.
func NewRouter(cfg *config.Config, courseCtl *CourseController, lessonCtl *LessonController) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "coursehub",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Covers are served straight from the public directory.
	app.Static("/", "./"+cfg.Images.PublicDir)

	auth := AuthMiddleware(cfg.JWTSecret)
	teacherOnly := RequireRole(model.RoleTeacher, model.RoleAdministrator)

	courses := app.Group("/courses")
	courses.Get("/", courseCtl.List)

	// Fixed segments must register before the :id wildcard.
	courses.Get("/home", courseCtl.Home)
	courses.Get("/title-available", courseCtl.TitleAvailable)
	courses.Get("/payment/capture", courseCtl.CapturePayment)

	courses.Post("/", auth, teacherOnly, courseCtl.Create)
	courses.Get("/:id", courseCtl.Detail)
	courses.Get("/:id/editing", auth, courseCtl.RequireCourseAuthor, courseCtl.GetForEditing)
	courses.Put("/:id", auth, courseCtl.RequireCourseAuthor, courseCtl.Edit)
	courses.Delete("/:id", auth, courseCtl.RequireCourseAuthor, courseCtl.Delete)
	courses.Post("/:id/questions", auth, courseCtl.AskQuestion)
	courses.Post("/:id/payment", auth, courseCtl.Pay)
	courses.Get("/:id/subscription", auth, courseCtl.GetSubscription)
	courses.Post("/:id/vote", auth, courseCtl.Vote)
	courses.Post("/:id/lessons", auth, courseCtl.RequireCourseAuthor, lessonCtl.Create)

	lessons := app.Group("/lessons")
	lessons.Get("/:id", lessonCtl.Get)
	lessons.Get("/:id/editing", auth, lessonCtl.RequireLessonCourseAuthor, lessonCtl.GetForEditing)
	lessons.Put("/:id", auth, lessonCtl.RequireLessonCourseAuthor, lessonCtl.Edit)
	lessons.Delete("/:id", auth, lessonCtl.RequireLessonCourseAuthor, lessonCtl.Delete)

	return app
}
