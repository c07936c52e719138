package routes

import (
	controller "uptask/controllers"
	"uptask/middleware"
	"uptask/store"
	"uptask/utils"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies is everything the HTTP layer needs from the outside.
type Dependencies struct {
	DB     *gorm.DB
	Tokens store.TokenStore
	Emails *utils.AuthEmail

	// Redis backs the rate limiter counters when set.
	Redis *redis.Client

	CORS          middleware.CORSConfig
	AuthRateLimit int

	// AccessLog disables the per-request access log when false.
	AccessLog bool
}

// NewApp builds the Fiber application with every route mounted.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "uptask",
		ErrorHandler: utils.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		}))
	}

	// Health checks send no Origin, so they stay in front of CORS
	health := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	}
	app.Get("/", health)
	app.Get("/health", health)

	app.Use(middleware.CORS(deps.CORS))

	SetupAuthRoutes(app, deps)
	SetupProjectRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return utils.Fail(c, utils.ErrNotFound, "Route not found")
	})

	return app
}

func SetupAuthRoutes(app *fiber.App, deps Dependencies) {
	authController := controller.NewAuthController(deps.DB, deps.Tokens, deps.Emails, logrus.WithField("component", "auth"))

	limit := deps.AuthRateLimit
	if limit <= 0 {
		limit = 20
	}
	throttle := middleware.AuthRateLimiter(limit, deps.Redis)

	auth := app.Group("/api/auth")

	// Public endpoints
	auth.Post("/create-account", throttle, authController.CreateAccount)
	auth.Post("/confirm-account", throttle, authController.ConfirmAccount)
	auth.Post("/login", throttle, authController.Login)
	auth.Post("/request-code", throttle, authController.RequestConfirmationCode)
	auth.Post("/forgot-password", throttle, authController.ForgotPassword)
	auth.Post("/validate-token", throttle, authController.ValidateToken)
	auth.Post("/update-password/:token", throttle, authController.UpdatePasswordWithToken)

	// Endpoints for the signed-in user
	authenticate := middleware.Authenticate(deps.DB)
	auth.Get("/user", authenticate, authController.GetCurrentUser)
	auth.Put("/profile", authenticate, authController.UpdateProfile)
	auth.Post("/update-password", authenticate, authController.UpdateCurrentUserPassword)
	auth.Post("/check-password", authenticate, authController.CheckPassword)
}

func SetupProjectRoutes(app *fiber.App, deps Dependencies) {
	projectController := controller.NewProjectController(deps.DB, logrus.WithField("component", "project"))
	taskController := controller.NewTaskController(deps.DB, logrus.WithField("component", "task"))
	teamController := controller.NewTeamController(deps.DB, logrus.WithField("component", "team"))
	noteController := controller.NewNoteController(deps.DB, logrus.WithField("component", "note"))

	projectExists := middleware.ProjectExists(deps.DB)
	taskExists := middleware.TaskExists(deps.DB)
	taskInProject := middleware.TaskBelongsToProject()
	managerOnly := middleware.HasAuthorization()
	membersOnly := middleware.HasAccess()

	projects := app.Group("/api/projects", middleware.Authenticate(deps.DB))

	projects.Post("/", projectController.CreateProject)
	projects.Get("/", projectController.GetAllProjects)
	projects.Get("/:projectId", projectExists, membersOnly, projectController.GetProjectByID)
	projects.Put("/:projectId", projectExists, managerOnly, projectController.UpdateProject)
	projects.Delete("/:projectId", projectExists, managerOnly, projectController.DeleteProject)

	// Tasks
	projects.Post("/:projectId/tasks", projectExists, managerOnly, taskController.CreateTask)
	projects.Get("/:projectId/tasks", projectExists, membersOnly, taskController.GetProjectTasks)

	task := projects.Group("/:projectId/tasks/:taskId", projectExists, taskExists, taskInProject)
	task.Get("/", membersOnly, taskController.GetTaskByID)
	task.Put("/", managerOnly, taskController.UpdateTask)
	task.Delete("/", managerOnly, taskController.DeleteTask)
	task.Post("/status", membersOnly, taskController.UpdateStatus)

	// Notes
	task.Post("/notes", membersOnly, noteController.CreateNote)
	task.Get("/notes", membersOnly, noteController.GetTaskNotes)
	task.Delete("/notes/:noteId", membersOnly, noteController.DeleteNote)

	// Team
	team := projects.Group("/:projectId/team", projectExists, managerOnly)
	team.Post("/find", teamController.FindMemberByEmail)
	team.Get("/", teamController.GetProjectTeam)
	team.Post("/", teamController.AddMemberByID)
	team.Delete("/:userId", teamController.RemoveMemberByID)
}
