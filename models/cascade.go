package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyMember = errors.New("user is already a team member")
	ErrNotMember     = errors.New("user is not a team member")
	ErrIsManager     = errors.New("user is the project manager")

	// ErrPairedWrite marks a failure in one half of a two-entity write. The
	// surrounding transaction has been rolled back when it is returned.
	ErrPairedWrite = errors.New("paired write failed")
)

// AttachTask creates task under project. The parent is re-read inside the
// transaction so a concurrently deleted project never gains a task.
func AttachTask(db *gorm.DB, project *Project, task *Task) error {
	task.ProjectID = project.ID
	if task.Status == "" {
		task.Status = StatusPending
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Project{}, project.ID).Error; err != nil {
			return fmt.Errorf("%w: load project %d: %w", ErrPairedWrite, project.ID, err)
		}
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return fmt.Errorf("%w: create task: %w", ErrPairedWrite, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	project.Tasks = append(project.Tasks, *task)
	return nil
}

// AttachNote creates note under task, verifying the task still exists.
func AttachNote(db *gorm.DB, task *Task, note *Note) error {
	note.TaskID = task.ID

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Task{}, task.ID).Error; err != nil {
			return fmt.Errorf("%w: load task %d: %w", ErrPairedWrite, task.ID, err)
		}
		if err := tx.Omit(clause.Associations).Create(note).Error; err != nil {
			return fmt.Errorf("%w: create note: %w", ErrPairedWrite, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	task.Notes = append(task.Notes, *note)
	return nil
}

// RecordStatusChange sets the task status and appends the change to its
// history in one transaction.
func RecordStatusChange(db *gorm.DB, task *Task, userID uint, status TaskStatus) error {
	change := StatusChange{TaskID: task.ID, UserID: userID, Status: status}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Task{}).Where("id = ?", task.ID).Update("status", status).Error; err != nil {
			return fmt.Errorf("%w: update status: %w", ErrPairedWrite, err)
		}
		if err := tx.Omit(clause.Associations).Create(&change).Error; err != nil {
			return fmt.Errorf("%w: append history: %w", ErrPairedWrite, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	task.Status = status
	task.CompletedBy = append(task.CompletedBy, change)
	return nil
}

// DeleteNote removes a note from its task.
func DeleteNote(db *gorm.DB, task *Task, note *Note) error {
	res := db.Where("id = ? AND task_id = ?", note.ID, task.ID).Delete(&Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	notes := task.Notes[:0]
	for _, n := range task.Notes {
		if n.ID != note.ID {
			notes = append(notes, n)
		}
	}
	task.Notes = notes
	return nil
}

// DeleteTaskCascade deletes a task with its notes and status history.
func DeleteTaskCascade(db *gorm.DB, project *Project, task *Task) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return deleteTasks(tx, []uint{task.ID})
	})
	if err != nil {
		return err
	}

	tasks := project.Tasks[:0]
	for _, t := range project.Tasks {
		if t.ID != task.ID {
			tasks = append(tasks, t)
		}
	}
	project.Tasks = tasks
	return nil
}

// DeleteProjectCascade deletes a project, its team, its tasks and every note
// and status change of those tasks.
func DeleteProjectCascade(db *gorm.DB, project *Project) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if err := deleteTasks(tx, taskIDs); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&ProjectMember{}).Error; err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		if err := tx.Delete(&Project{}, project.ID).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

func deleteTasks(tx *gorm.DB, taskIDs []uint) error {
	if len(taskIDs) == 0 {
		return nil
	}

	// Children first
	tables := []interface{}{
		&Note{},
		&StatusChange{},
	}
	for _, table := range tables {
		if err := tx.Where("task_id IN ?", taskIDs).Delete(table).Error; err != nil {
			return fmt.Errorf("delete task children: %w", err)
		}
	}

	if err := tx.Where("id IN ?", taskIDs).Delete(&Task{}).Error; err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

// AddTeamMember adds userID to the project's team.
func AddTeamMember(db *gorm.DB, project *Project, userID uint) error {
	if project.IsManager(userID) {
		return ErrIsManager
	}

	member := ProjectMember{ProjectID: project.ID, UserID: userID}
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ProjectMember{}).
			Where("project_id = ? AND user_id = ?", project.ID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}
		return tx.Omit(clause.Associations).Create(&member).Error
	})
	if err != nil {
		return err
	}

	project.Members = append(project.Members, member)
	return nil
}

// RemoveTeamMember removes userID from the project's team.
func RemoveTeamMember(db *gorm.DB, project *Project, userID uint) error {
	res := db.Where("project_id = ? AND user_id = ?", project.ID, userID).Delete(&ProjectMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotMember
	}

	members := project.Members[:0]
	for _, m := range project.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	project.Members = members
	return nil
}

// TeamMembers returns the users on the project's team in join order.
func TeamMembers(db *gorm.DB, project *Project) ([]User, error) {
	var members []ProjectMember
	if err := db.Preload("User").
		Where("project_id = ?", project.ID).
		Order("created_at").
		Find(&members).Error; err != nil {
		return nil, err
	}

	users := make([]User, 0, len(members))
	for _, m := range members {
		users = append(users, m.User)
	}
	return users, nil
}
