package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager-api/internal/middleware"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/service"
	"taskmanager-api/internal/websocket"
	"taskmanager-api/pkg/logger"
)

type TaskHandler struct {
	tasks    service.TaskService
	hub      *websocket.Hub
	validate *validator.Validate
}

func NewTaskHandler(tasks service.TaskService, hub *websocket.Hub, validate *validator.Validate) *TaskHandler {
	return &TaskHandler{tasks: tasks, hub: hub, validate: validate}
}

func (h *TaskHandler) publish(evType string, task models.Task) {
	if h.hub == nil {
		return
	}
	ev := websocket.Event{Type: evType, TaskID: task.ID}
	if evType != websocket.EventTaskDeleted {
		ev.Task = &task
	}
	h.hub.Publish(task.OwnerID, ev)
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req models.TaskCreate
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	task, err := h.tasks.CreateTask(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Task created successfully", zap.String("task_id", task.ID), zap.String("user_id", user.ID))
	h.publish(websocket.EventTaskCreated, task)
	c.Location(fmt.Sprintf("/api/v1/tasks/%s", task.ID))
	return success(c, fiber.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	q := models.DefaultTaskQuery()
	if err := c.QueryParser(&q); err != nil {
		return unprocessable("Invalid query parameters", err.Error())
	}
	if err := h.validate.Struct(q); err != nil {
		return err
	}

	page, err := h.tasks.ListTasks(c.UserContext(), user.ID, q)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Tasks fetched successfully", page)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	task, err := h.tasks.GetTask(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Task fetched successfully", task)
}

func (h *TaskHandler) ReplaceTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req models.TaskReplace
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	task, err := h.tasks.ReplaceTask(c.UserContext(), c.Params("id"), user.ID, req)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Task replaced successfully", zap.String("task_id", task.ID), zap.String("user_id", user.ID))
	h.publish(websocket.EventTaskReplaced, task)
	return success(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) PatchTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req models.TaskPatch
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.HasForbiddenNull() {
		return unprocessable("title, status and priority cannot be null", nil)
	}
	if req.IsEmpty() {
		return unprocessable("At least one field must be provided", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	task, err := h.tasks.PatchTask(c.UserContext(), c.Params("id"), user.ID, req)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Task patched successfully", zap.String("task_id", task.ID), zap.String("user_id", user.ID))
	h.publish(websocket.EventTaskPatched, task)
	return success(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	id := c.Params("id")

	if err := h.tasks.DeleteTask(c.UserContext(), id, user.ID); err != nil {
		return err
	}

	logger.AuditLogger.Info("Task deleted successfully", zap.String("task_id", id), zap.String("user_id", user.ID))
	h.publish(websocket.EventTaskDeleted, models.Task{ID: id, OwnerID: user.ID})
	return c.SendStatus(fiber.StatusNoContent)
}
