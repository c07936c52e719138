package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"uptask/middleware"
	"uptask/models"
	"uptask/utils"
)

type ProjectRequest struct {
	ProjectName string `json:"projectName" validate:"required"`
	ClientName  string `json:"clientName" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type ProjectController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewProjectController(db *gorm.DB, logger *logrus.Entry) *ProjectController {
	return &ProjectController{
		DB:     db,
		Logger: logger,
	}
}

// CreateProject creates a project managed by the caller.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	var req ProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	project := models.Project{
		ProjectName: trim(req.ProjectName),
		ClientName:  trim(req.ClientName),
		Description: trim(req.Description),
		ManagerID:   middleware.ScopeFrom(c).User.ID,
	}
	if err := pc.DB.WithContext(c.UserContext()).Create(&project).Error; err != nil {
		return err
	}

	pc.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"manager_id": project.ManagerID,
	}).Info("project created")
	return utils.MessageResponse(c, "Project created")
}

// GetAllProjects lists the projects the caller manages or belongs to.
func (pc *ProjectController) GetAllProjects(c *fiber.Ctx) error {
	projects, err := models.ProjectsForUser(pc.DB.WithContext(c.UserContext()), middleware.ScopeFrom(c).User.ID)
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return c.JSON(projects)
}

// GetProjectByID returns a project with its tasks.
func (pc *ProjectController) GetProjectByID(c *fiber.Ctx) error {
	project := middleware.ScopeFrom(c).Project

	tasks, err := models.TasksForProject(pc.DB.WithContext(c.UserContext()), project.ID)
	if err != nil {
		return err
	}
	project.Tasks = tasks

	return c.JSON(project)
}

// UpdateProject replaces the project's name, client and description.
func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	var req ProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project := middleware.ScopeFrom(c).Project

	if err := pc.DB.WithContext(c.UserContext()).
		Model(project).
		Select("project_name", "client_name", "description").
		Updates(models.Project{
			ProjectName: trim(req.ProjectName),
			ClientName:  trim(req.ClientName),
			Description: trim(req.Description),
		}).Error; err != nil {
		return err
	}

	return utils.MessageResponse(c, "Project updated")
}

// DeleteProject deletes the project with its team, tasks and notes.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	project := middleware.ScopeFrom(c).Project

	if err := models.DeleteProjectCascade(pc.DB.WithContext(c.UserContext()), project); err != nil {
		return err
	}

	pc.Logger.WithField("project_id", project.ID).Info("project deleted")
	return utils.MessageResponse(c, "Project deleted")
}
