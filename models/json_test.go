package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uptask/models"
)

func TestProjectJSON(t *testing.T) {
	project := models.Project{
		ID:          7,
		ProjectName: "Website",
		ClientName:  "ACME",
		Description: "Redesign",
		ManagerID:   1,
		Members:     []models.ProjectMember{{ProjectID: 7, UserID: 2}},
	}

	raw, err := json.Marshal(project)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Website", out["projectName"])
	assert.EqualValues(t, 1, out["manager"])
	assert.Equal(t, []interface{}{float64(2)}, out["team"])
	assert.Equal(t, []interface{}{}, out["tasks"])
	assert.NotContains(t, out, "Members")
}

func TestTaskJSON(t *testing.T) {
	task := models.Task{ID: 3, Name: "Build", ProjectID: 7, Status: models.StatusOnHold}

	raw, err := json.Marshal(task)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "onHold", out["status"])
	assert.EqualValues(t, 7, out["project"])
	assert.Equal(t, []interface{}{}, out["completedBy"])
	assert.Equal(t, []interface{}{}, out["notes"])
}

func TestUserJSONHidesSecrets(t *testing.T) {
	raw, err := json.Marshal(models.User{ID: 1, Name: "Ann", Email: "ann@example.com", PasswordHash: "hash", Confirmed: true})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":1,"name":"Ann","email":"ann@example.com"}`, string(raw))
}

func TestTaskStatusValid(t *testing.T) {
	for _, status := range models.TaskStatuses {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, models.TaskStatus("done").Valid())
}
