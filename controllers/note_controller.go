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

type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}

type NoteController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewNoteController(db *gorm.DB, logger *logrus.Entry) *NoteController {
	return &NoteController{
		DB:     db,
		Logger: logger,
	}
}

// CreateNote attaches a note by the caller to the task.
func (nc *NoteController) CreateNote(c *fiber.Ctx) error {
	var req NoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	scope := middleware.ScopeFrom(c)

	note := models.Note{
		Content:   req.Content,
		CreatedBy: scope.User.ID,
	}
	if err := models.AttachNote(nc.DB.WithContext(c.UserContext()), scope.Task, &note); err != nil {
		return err
	}

	return utils.MessageResponse(c, "Note created")
}

// GetTaskNotes lists the task's notes with their authors.
func (nc *NoteController) GetTaskNotes(c *fiber.Ctx) error {
	notes, err := models.NotesForTask(nc.DB.WithContext(c.UserContext()), middleware.ScopeFrom(c).Task.ID)
	if err != nil {
		return err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return c.JSON(notes)
}

// DeleteNote removes a note. Only its author may do so.
func (nc *NoteController) DeleteNote(c *fiber.Ctx) error {
	noteID, err := c.ParamsInt("noteId")
	if err != nil || noteID <= 0 {
		return utils.Fail(c, utils.ErrInvalidAction, "Invalid note ID")
	}
	scope := middleware.ScopeFrom(c)
	db := nc.DB.WithContext(c.UserContext())

	var note models.Note
	err = db.Where("id = ? AND task_id = ?", noteID, scope.Task.ID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "Note not found")
	}
	if err != nil {
		return err
	}

	if !note.IsAuthor(scope.User.ID) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid action")
	}

	if err := models.DeleteNote(db, scope.Task, &note); err != nil {
		return err
	}

	nc.Logger.WithFields(logrus.Fields{
		"note_id": note.ID,
		"task_id": scope.Task.ID,
	}).Debug("note deleted")
	return utils.MessageResponse(c, "Note deleted")
}
