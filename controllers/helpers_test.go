package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"uptask/models"
	"uptask/testutil"
)

func TestPairedWriteResult(t *testing.T) {
	testutil.Configure(t)
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "Ann", "ann@example.com", false)

	res := db.Model(&models.User{}).Where("id = ?", user.ID).Update("confirmed", true)
	assert.NoError(t, pairedWriteResult(res, "confirm"))

	res = db.Model(&models.User{}).Where("id = ?", user.ID+100).Update("confirmed", true)
	err := pairedWriteResult(res, "confirm")
	assert.ErrorIs(t, err, models.ErrPairedWrite)

	err = pairedWriteResult(&gorm.DB{Error: errors.New("disk full")}, "confirm")
	assert.ErrorIs(t, err, models.ErrPairedWrite)
	assert.Contains(t, err.Error(), "disk full")
}
