package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager-api/internal/models"
)

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func TestValidator_TaskPatch(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(models.TaskPatch{Status: models.Some(models.StatusResolved)}))
	assert.NoError(t, v.Struct(models.TaskPatch{Description: models.Optional[string]{Set: true, Null: true}}))

	err := v.Struct(models.TaskPatch{Title: models.Some("")})
	assert.Equal(t, []string{"title"}, failedFields(t, err))

	err = v.Struct(models.TaskPatch{Description: models.Some("short")})
	assert.Equal(t, []string{"description"}, failedFields(t, err))

	err = v.Struct(models.TaskPatch{Priority: models.Some(models.TaskPriority("whenever"))})
	assert.Equal(t, []string{"priority"}, failedFields(t, err))
}

func TestValidator_UserCreate(t *testing.T) {
	v := NewValidator()
	ok := models.UserCreate{Username: "alice", Email: "alice@example.com", Password: "correct-horse"}
	assert.NoError(t, v.Struct(ok))

	long := ok
	long.Password = strings.Repeat("é", 40)
	assert.Equal(t, []string{"password"}, failedFields(t, v.Struct(long)))

	bad := models.UserCreate{Username: "al", Email: "not-an-email", Password: "short"}
	assert.ElementsMatch(t, []string{"username", "email", "password"}, failedFields(t, v.Struct(bad)))
}

func TestValidator_TaskCreate(t *testing.T) {
	v := NewValidator()
	empty := ""

	assert.NoError(t, v.Struct(models.TaskCreate{Title: "Write report"}))
	assert.Equal(t, []string{"description"},
		failedFields(t, v.Struct(models.TaskCreate{Title: "Write report", Description: &empty})))
	assert.Equal(t, []string{"title"}, failedFields(t, v.Struct(models.TaskCreate{Title: "tiny"})))
}

func TestValidator_TaskQuery(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(models.DefaultTaskQuery()))

	q := models.DefaultTaskQuery()
	q.Limit = 0
	q.Status = "archived"
	assert.ElementsMatch(t, []string{"limit", "status"}, failedFields(t, v.Struct(q)))

	q = models.DefaultTaskQuery()
	q.Limit = 101
	q.Sort = "title"
	assert.ElementsMatch(t, []string{"limit", "sort"}, failedFields(t, v.Struct(q)))
}
