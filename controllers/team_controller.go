package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"uptask/middleware"
	"uptask/models"
	"uptask/utils"
)

type FindMemberRequest struct {
	Email string `json:"email" validate:"required,mailbox"`
}

type AddMemberRequest struct {
	ID uint `json:"id" validate:"required,gt=0"`
}

type TeamController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTeamController(db *gorm.DB, logger *logrus.Entry) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

// FindMemberByEmail looks up a user the manager may add to the team.
func (tc *TeamController) FindMemberByEmail(c *fiber.Ctx) error {
	var req FindMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var user models.User
	err := tc.DB.WithContext(c.UserContext()).
		Select("id", "name", "email").
		Where("email = ?", models.NormalizeEmail(req.Email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// GetProjectTeam lists the team members of the project.
func (tc *TeamController) GetProjectTeam(c *fiber.Ctx) error {
	users, err := models.TeamMembers(tc.DB.WithContext(c.UserContext()), middleware.ScopeFrom(c).Project)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// AddMemberByID adds an existing user to the team.
func (tc *TeamController) AddMemberByID(c *fiber.Ctx) error {
	var req AddMemberRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project := middleware.ScopeFrom(c).Project
	db := tc.DB.WithContext(c.UserContext())

	var user models.User
	err := db.Select("id").First(&user, req.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}

	switch err := models.AddTeamMember(db, project, user.ID); {
	case errors.Is(err, models.ErrAlreadyMember):
		return utils.Fail(c, utils.ErrConflict, "User is already on the team")
	case errors.Is(err, models.ErrIsManager):
		return utils.Fail(c, utils.ErrConflict, "User is the project manager")
	case err != nil:
		return err
	}

	tc.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    user.ID,
	}).Info("team member added")
	return utils.MessageResponse(c, "User added to the team")
}

// RemoveMemberByID removes a user from the team.
func (tc *TeamController) RemoveMemberByID(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return utils.Fail(c, utils.ErrInvalidAction, "Invalid user ID")
	}
	project := middleware.ScopeFrom(c).Project

	err = models.RemoveTeamMember(tc.DB.WithContext(c.UserContext()), project, uint(userID))
	if errors.Is(err, models.ErrNotMember) {
		return utils.Fail(c, utils.ErrConflict, "User is not on the team")
	}
	if err != nil {
		return err
	}

	tc.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    userID,
	}).Info("team member removed")
	return utils.MessageResponse(c, "User removed from the team")
}
