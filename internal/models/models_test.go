package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatusUnmarshal(t *testing.T) {
	var s TaskStatus
	require.NoError(t, json.Unmarshal([]byte(`"in_progress"`), &s))
	assert.Equal(t, StatusInProgress, s)

	assert.Error(t, json.Unmarshal([]byte(`"done"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`"NEW"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`7`), &s))
}

func TestTaskPriorityUnmarshal(t *testing.T) {
	var p TaskPriority
	require.NoError(t, json.Unmarshal([]byte(`"urgent"`), &p))
	assert.Equal(t, PriorityUrgent, p)

	assert.Error(t, json.Unmarshal([]byte(`"critical"`), &p))
}

func TestParseEnums(t *testing.T) {
	_, err := ParseTaskStatus("resolved")
	assert.NoError(t, err)
	_, err = ParseTaskStatus("")
	assert.Error(t, err)

	_, err = ParseTaskPriority("low")
	assert.NoError(t, err)
	_, err = ParseTaskPriority("LOW")
	assert.Error(t, err)
}

func TestTaskPatchPresence(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"resolved"}`), &p))

	assert.True(t, p.Status.Present())
	assert.Equal(t, StatusResolved, p.Status.Value)
	assert.False(t, p.Title.Set)
	assert.False(t, p.Description.Set)
	assert.False(t, p.Priority.Set)
	assert.False(t, p.IsEmpty())
}

func TestTaskPatchNullDescription(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &p))

	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)
	assert.True(t, p.IsEmpty())
	assert.False(t, p.HasForbiddenNull())
}

func TestTaskPatchForbiddenNull(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":null,"priority":"high"}`), &p))

	assert.True(t, p.HasForbiddenNull())
}

func TestTaskPatchInvalidEnum(t *testing.T) {
	var p TaskPatch
	assert.Error(t, json.Unmarshal([]byte(`{"priority":"whenever"}`), &p))
}

func TestTaskCloneIsIndependent(t *testing.T) {
	desc := "a long enough description"
	now := time.Now()
	orig := Task{ID: "1", Title: "Original", Description: &desc, UpdatedAt: &now}

	c := orig.Clone()
	*c.Description = "changed description"
	*c.UpdatedAt = now.Add(time.Hour)

	assert.Equal(t, "a long enough description", *orig.Description)
	assert.Equal(t, now, *orig.UpdatedAt)
}

func TestUserHidesPassword(t *testing.T) {
	b, err := json.Marshal(User{ID: "1", Username: "alice", HashedPassword: "$2a$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
}
