package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daily-tasks/internal/service"
)

// Handler exposes the planner over JSON.
type Handler struct {
	planner *service.Planner
}

func NewHandler(planner *service.Planner) *Handler {
	return &Handler{planner: planner}
}

type createTaskRequest struct {
	Name        string `json:"name"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
	IsRecurring bool   `json:"isRecurring"`
}

type taskListResponse struct {
	Date  string             `json:"date"`
	Tasks []service.TaskView `json:"tasks"`
}

// NewRouter wires every route. metrics may be nil; middleware is applied in order.
func NewRouter(h *Handler, metrics http.Handler, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)

	router.GET("/healthz", h.Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api")
	{
		api.GET("/tasks", h.ListTasks)
		api.POST("/tasks", h.CreateTask)
		api.POST("/tasks/clear", h.ClearOneTime)
		api.POST("/tasks/sort", h.SortTasks)
		api.POST("/tasks/:id/toggle", h.ToggleTask)
		api.DELETE("/tasks/:id", h.DeleteTask)
		api.GET("/templates", h.ListTemplates)
		api.POST("/reload", h.Reload)
	}
	return router
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": h.planner.Snapshot().Len()})
}

func (h *Handler) ListTasks(c *gin.Context) {
	now := h.planner.Now()
	success(c, taskListResponse{
		Date:  service.DayOf(now),
		Tasks: h.planner.Snapshot().Views(now),
	})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.planner.Add(c.Request.Context(), service.TaskInput{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		IsRecurring: req.IsRecurring,
	})
	if err != nil && task.ID == "" {
		failure(c, err)
		return
	}
	view := service.TaskView{Task: task, Status: service.StatusOf(task, h.planner.Now())}
	if err != nil {
		// Stored for today, but it will not repeat.
		createdWithError(c, "Task added", service.UserMessage(err), view)
		return
	}
	created(c, "Task added", view)
}

func (h *Handler) ToggleTask(c *gin.Context) {
	task, err := h.planner.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure(c, err)
		return
	}
	success(c, service.TaskView{Task: task, Status: service.StatusOf(task, h.planner.Now())})
}

// DeleteTask removes one instance. With ?template=true a recurring task's
// template goes too.
func (h *Handler) DeleteTask(c *gin.Context) {
	removeTemplate, err := strconv.ParseBool(c.DefaultQuery("template", "false"))
	if err != nil {
		badRequest(c, "template must be true or false")
		return
	}

	remove := h.planner.Delete
	if removeTemplate {
		remove = h.planner.RemoveRecurring
	}
	task, err := remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		failure(c, err)
		return
	}
	success(c, task)
}

func (h *Handler) ClearOneTime(c *gin.Context) {
	n, err := h.planner.ClearOneTime(c.Request.Context())
	if err != nil {
		failure(c, err)
		return
	}
	success(c, gin.H{"cleared": n})
}

func (h *Handler) SortTasks(c *gin.Context) {
	h.planner.SortByStartTime()
	h.ListTasks(c)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.planner.Templates(c.Request.Context())
	if err != nil {
		failure(c, err)
		return
	}
	success(c, templates)
}

// Reload refetches the list and runs the daily reset when due.
func (h *Handler) Reload(c *gin.Context) {
	didReset, err := h.planner.Load(c.Request.Context())
	if err != nil {
		failure(c, err)
		return
	}
	success(c, gin.H{"reset": didReset, "tasks": h.planner.Snapshot().Len()})
}
