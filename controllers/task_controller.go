package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"uptask/middleware"
	"uptask/models"
	"uptask/utils"
)

type TaskRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending onHold inProgress underReview completed"`
}

type TaskController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTaskController(db *gorm.DB, logger *logrus.Entry) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logger,
	}
}

// CreateTask adds a task to the project.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project := middleware.ScopeFrom(c).Project

	task := models.Task{
		Name:        trim(req.Name),
		Description: trim(req.Description),
	}
	if err := models.AttachTask(tc.DB.WithContext(c.UserContext()), project, &task); err != nil {
		return err
	}

	return utils.MessageResponse(c, "Task created")
}

// GetProjectTasks lists the project's tasks in creation order.
func (tc *TaskController) GetProjectTasks(c *fiber.Ctx) error {
	project := middleware.ScopeFrom(c).Project

	tasks, err := models.TasksForProject(tc.DB.WithContext(c.UserContext()), project.ID)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return c.JSON(tasks)
}

// GetTaskByID returns the task with its status history and notes.
func (tc *TaskController) GetTaskByID(c *fiber.Ctx) error {
	task, err := models.LoadTaskDetails(tc.DB.WithContext(c.UserContext()), middleware.ScopeFrom(c).Task.ID)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// UpdateTask replaces the task's name and description.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task := middleware.ScopeFrom(c).Task

	if err := tc.DB.WithContext(c.UserContext()).
		Model(task).
		Select("name", "description").
		Updates(models.Task{
			Name:        trim(req.Name),
			Description: trim(req.Description),
		}).Error; err != nil {
		return err
	}

	return utils.MessageResponse(c, "Task updated")
}

// DeleteTask deletes the task with its notes.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	scope := middleware.ScopeFrom(c)

	if err := models.DeleteTaskCascade(tc.DB.WithContext(c.UserContext()), scope.Project, scope.Task); err != nil {
		return err
	}

	return utils.MessageResponse(c, "Task deleted")
}

// UpdateStatus moves the task to any status and records who did it.
func (tc *TaskController) UpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	scope := middleware.ScopeFrom(c)

	status := models.TaskStatus(req.Status)
	if err := models.RecordStatusChange(tc.DB.WithContext(c.UserContext()), scope.Task, scope.User.ID, status); err != nil {
		return err
	}

	tc.Logger.WithFields(logrus.Fields{
		"task_id": scope.Task.ID,
		"user_id": scope.User.ID,
		"status":  status,
	}).Debug("task status changed")
	return utils.MessageResponse(c, "Status updated")
}
