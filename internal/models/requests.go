package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Optional records whether a JSON field was present and whether it was an
// explicit null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Present reports whether the field carries a value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// TaskPatch is a sparse task update. Only present fields are written; a null
// description clears it.
type TaskPatch struct {
	Title       Optional[string]       `json:"title" validate:"omitempty,min=5,max=100"`
	Description Optional[string]       `json:"description" validate:"omitempty,min=10,max=1000"`
	Status      Optional[TaskStatus]   `json:"status" validate:"omitempty,task_status"`
	Priority    Optional[TaskPriority] `json:"priority" validate:"omitempty,task_priority"`
}

// IsEmpty reports whether the patch has no field carrying a value.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Present() && !p.Description.Present() &&
		!p.Status.Present() && !p.Priority.Present()
}

// HasForbiddenNull reports a null on a field that cannot be cleared.
func (p TaskPatch) HasForbiddenNull() bool {
	return p.Title.Null || p.Status.Null || p.Priority.Null
}

type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128,bcrypt_len"`
}

type TaskCreate struct {
	Title       string       `json:"title" validate:"required,min=5,max=100"`
	Description *string      `json:"description" validate:"omitempty,min=10,max=1000"`
	Status      TaskStatus   `json:"status" validate:"omitempty,task_status"`
	Priority    TaskPriority `json:"priority" validate:"omitempty,task_priority"`
}

// TaskReplace carries every replaceable field of a task.
type TaskReplace TaskCreate

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TaskQuery holds the list parameters accepted from the query string.
type TaskQuery struct {
	Limit    int64         `query:"limit" validate:"min=1,max=100"`
	Skip     int64         `query:"skip" validate:"min=0"`
	Sort     SortField     `query:"sort" validate:"oneof=created_at updated_at"`
	SortDir  SortDirection `query:"sort_dir" validate:"oneof=asc desc"`
	Status   TaskStatus    `query:"status" validate:"omitempty,task_status"`
	Priority TaskPriority  `query:"priority" validate:"omitempty,task_priority"`
}

// DefaultTaskQuery returns the query used when no parameters are given.
func DefaultTaskQuery() TaskQuery {
	return TaskQuery{Limit: 50, Skip: 0, Sort: SortCreatedAt, SortDir: SortDesc}
}

// TaskFilter is a set of equality constraints; zero fields are unconstrained.
type TaskFilter struct {
	OwnerID  string
	Status   TaskStatus
	Priority TaskPriority
}

type ListOptions struct {
	Limit   int64
	Skip    int64
	Sort    SortField
	SortDir SortDirection
}

type PageMeta struct {
	Total   int64         `json:"total"`
	Limit   int64         `json:"limit"`
	Skip    int64         `json:"skip"`
	Sort    SortField     `json:"sort"`
	SortDir SortDirection `json:"sort_dir"`
}

// TaskPage is one page of a listing together with the unpaginated total.
type TaskPage struct {
	Items []Task   `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// LoginRequest accepts either a JSON body or an urlencoded form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (u *UserCreate) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
}

func (t *TaskCreate) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	if t.Description != nil {
		d := strings.TrimSpace(*t.Description)
		t.Description = &d
	}
}

func (t *TaskReplace) Normalize() {
	(*TaskCreate)(t).Normalize()
}

func (p *TaskPatch) Normalize() {
	p.Title.Value = strings.TrimSpace(p.Title.Value)
	p.Description.Value = strings.TrimSpace(p.Description.Value)
}
