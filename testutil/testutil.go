// Package testutil wires throwaway databases, mailers and fixtures for tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"uptask/config"
	"uptask/models"
	"uptask/utils"
)

const (
	TestSecret   = "test-secret"
	TestPassword = "password123"
)

// Configure installs settings suitable for tests into config.AppConfig.
func Configure(t *testing.T) {
	t.Helper()

	previous := config.AppConfig
	config.AppConfig = config.Config{
		Environment:        "test",
		FrontendURL:        "http://localhost:5173",
		AllowNoOrigin:      true,
		JWTSecret:          TestSecret,
		SessionTTL:         180 * 24 * time.Hour,
		BcryptCost:         4,
		TokenTTL:           10 * time.Minute,
		TokenSweepInterval: time.Minute,
		AuthRateLimit:      1000,
		LogLevel:           "error",
	}
	t.Cleanup(func() { config.AppConfig = previous })
}

// NewDB opens a private in-memory database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// MemoryMailer records messages instead of delivering them.
type MemoryMailer struct {
	mu       sync.Mutex
	messages []utils.Message
	Err      error
}

func (m *MemoryMailer) Send(ctx context.Context, msg utils.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	m.messages = append(m.messages, msg)
	return fmt.Sprintf("<memory-%d@uptask.test>", len(m.messages)), nil
}

func (m *MemoryMailer) Messages() []utils.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]utils.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

var codePattern = regexp.MustCompile(`<b>(\d{6})</b>`)

// LastCode returns the code from the latest message sent to address.
func (m *MemoryMailer) LastCode(t *testing.T, address string) string {
	t.Helper()

	messages := m.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].To != address {
			continue
		}
		match := codePattern.FindStringSubmatch(messages[i].HTML)
		require.Len(t, match, 2, "no code in message to %s", address)
		return match[1]
	}
	require.Failf(t, "no message", "nothing was sent to %s", address)
	return ""
}

// CreateUser inserts a user whose password is TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, name, email string, confirmed bool) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(TestPassword)
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(user).Error)
	if confirmed {
		require.NoError(t, db.Model(user).Update("confirmed", true).Error)
	}
	return user
}

// CreateProject inserts a project managed by manager with the given team.
func CreateProject(t *testing.T, db *gorm.DB, manager *models.User, team ...*models.User) *models.Project {
	t.Helper()

	project := &models.Project{
		ProjectName: "Website",
		ClientName:  "ACME",
		Description: "New company website",
		ManagerID:   manager.ID,
	}
	require.NoError(t, db.Create(project).Error)
	for _, member := range team {
		require.NoError(t, models.AddTeamMember(db, project, member.ID))
	}
	return project
}

// CreateTask attaches a pending task to project.
func CreateTask(t *testing.T, db *gorm.DB, project *models.Project, name string) *models.Task {
	t.Helper()

	task := &models.Task{Name: name, Description: name + " description"}
	require.NoError(t, models.AttachTask(db, project, task))
	return task
}

// Token returns a session token for user.
func Token(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := utils.GenerateJWTToken(user.ID)
	require.NoError(t, err)
	return token
}

// Request builds an HTTP request with an optional JSON body and bearer token.
func Request(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ReadBody drains and closes the response body.
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// DecodeJSON decodes the response body into out.
func DecodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
