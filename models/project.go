package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Project is owned by exactly one manager and shared read-only with its team.
type Project struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ProjectName string    `gorm:"not null" json:"projectName"`
	ClientName  string    `gorm:"not null" json:"clientName"`
	Description string    `gorm:"not null" json:"description"`
	ManagerID   uint      `gorm:"not null;index" json:"manager"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"-"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID" json:"-"`
}

// ProjectMember is one entry of a project's team. The composite key keeps
// the team free of duplicates.
type ProjectMember struct {
	ProjectID uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"-"`
	CreatedAt time.Time `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *Project) IsManager(userID uint) bool {
	return p.ManagerID == userID
}

// HasMember reports whether userID is on the team. Members must be loaded.
func (p *Project) HasMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CanAccess reports whether userID may read the project.
func (p *Project) CanAccess(userID uint) bool {
	return p.IsManager(userID) || p.HasMember(userID)
}

func (p *Project) TeamIDs() []uint {
	ids := make([]uint, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (p Project) MarshalJSON() ([]byte, error) {
	type project Project
	tasks := p.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(struct {
		project
		Team  []uint `json:"team"`
		Tasks []Task `json:"tasks"`
	}{
		project: project(p),
		Team:    p.TeamIDs(),
		Tasks:   tasks,
	})
}

// FindProject loads a project together with its team.
func FindProject(db *gorm.DB, id uint) (*Project, error) {
	var project Project
	if err := db.Preload("Members").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectsForUser lists the projects userID manages or is a team member of.
func ProjectsForUser(db *gorm.DB, userID uint) ([]Project, error) {
	memberOf := db.Model(&ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	var projects []Project
	err := db.Preload("Members").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("manager_id = ?", userID).
		Or("id IN (?)", memberOf).
		Order("id").
		Find(&projects).Error
	return projects, err
}
