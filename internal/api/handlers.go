package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/quickadd"
	"github.com/gerrardelliot83-create/floe/internal/service"
	"github.com/gerrardelliot83-create/floe/internal/stats"
)

const (
	defaultStatsDays   = 7
	defaultCurveWindow = 3
)

// TextRequest carries quick-add text.
type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParseRequest carries text to preview. Empty text is valid and parses to
// an empty draft; only a missing field is rejected.
type ParseRequest struct {
	Text *string `json:"text" binding:"required"`
}

// SessionBody records a finished focus session.
type SessionBody struct {
	Minutes   int        `json:"minutes" binding:"required,gte=1,lte=600"`
	TaskID    string     `json:"task_id"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

type taskQuery struct {
	All bool   `form:"all"`
	Tag string `form:"tag"`
}

type agendaQuery struct {
	Days int `form:"days" binding:"omitempty,gte=1,lte=90"`
}

type statsQuery struct {
	Days   int `form:"days" binding:"omitempty,gte=1,lte=365"`
	Window int `form:"window" binding:"omitempty,gte=1,lte=60"`
}

// ParseResult is returned by POST /api/parse.
type ParseResult struct {
	Draft   model.Draft `json:"draft"`
	Preview string      `json:"preview"`
}

// CompleteResult is returned by POST /api/tasks/:id/complete.
type CompleteResult struct {
	Task model.Task  `json:"task"`
	Next *model.Task `json:"next,omitempty"`
}

// StatsResult is returned by GET /api/stats.
type StatsResult struct {
	Days  []model.DailyFocus `json:"days"`
	Tasks stats.TaskStats    `json:"tasks"`
}

func (s *Server) handleHealth(c *gin.Context) {
	HandleSuccess(c, s.logger, http.StatusOK, gin.H{"status": "ok"}, nil)
}

func (s *Server) handleParse(c *gin.Context) {
	var body ParseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		HandleError(c, s.logger, err, http.StatusBadRequest, "Invalid JSON")
		return
	}
	now := s.now()
	draft := quickadd.Parse(*body.Text, now)
	HandleSuccess(c, s.logger, http.StatusOK, ParseResult{Draft: draft, Preview: quickadd.Preview(draft, now)}, nil)
}

func (s *Server) handleTaskList(c *gin.Context) {
	var q taskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, s.logger, err, http.StatusBadRequest, "Invalid query")
		return
	}
	tasks, err := s.tasks.List(c.Request.Context(), model.TaskFilter{UserID: s.userID, Tag: q.Tag, ShowCompleted: q.All})
	if err != nil {
		HandleError(c, s.logger, err, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	HandleSuccess(c, s.logger, http.StatusOK, tasks, map[string]any{"count": len(tasks)})
}

func (s *Server) handleTaskCreate(c *gin.Context) {
	var body TextRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		HandleError(c, s.logger, err, http.StatusBadRequest, "Invalid JSON")
		return
	}
	task, _, err := s.tasks.AddQuick(c.Request.Context(), service.QuickAddRequest{UserID: s.userID, Text: body.Text}, s.now())
	if err != nil {
		HandleError(c, s.logger, err, 0, "Failed to add task")
		return
	}
	HandleSuccess(c, s.logger, http.StatusCreated, task, nil)
}

func (s *Server) handleTaskComplete(c *gin.Context) {
	ctx := c.Request.Context()
	task, err := s.tasks.Resolve(ctx, s.userID, c.Param("id"))
	if err != nil {
		HandleError(c, s.logger, err, 0, "Failed to find task")
		return
	}
	done, next, err := s.tasks.Complete(ctx, task.ID, s.now())
	if err != nil {
		HandleError(c, s.logger, err, 0, "Failed to complete task")
		return
	}
	HandleSuccess(c, s.logger, http.StatusOK, CompleteResult{Task: done, Next: next}, nil)
}

func (s *Server) handleTaskDelete(c *gin.Context) {
	ctx := c.Request.Context()
	task, err := s.tasks.Resolve(ctx, s.userID, c.Param("id"))
	if err != nil {
		HandleError(c, s.logger, err, 0, "Failed to find task")
		return
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		HandleError(c, s.logger, err, 0, "Failed to delete task")
		return
	}
	HandleSuccess(c, s.logger, http.StatusOK, gin.H{"id": task.ID}, nil)
}

func (s *Server) handleSessionCreate(c *gin.Context) {
	var body SessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		HandleError(c, s.logger, err, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req := service.SessionRequest{
		UserID:  s.userID,
		Minutes: body.Minutes,
		TaskID:  body.TaskID,
		EndedAt: s.now(),
	}
	if body.EndedAt != nil {
		req.EndedAt = *body.EndedAt
	}
	if body.StartedAt != nil {
		req.StartedAt = *body.StartedAt
	}
	out, err := s.focus.Complete(c.Request.Context(), req)
	if err != nil {
		HandleError(c, s.logger, err, 0, "Failed to record session")
		return
	}
	HandleSuccess(c, s.logger, http.StatusCreated, out, nil)
}

func (s *Server) handleStreak(c *gin.Context) {
	summary, err := s.focus.Summary(c.Request.Context(), s.userID, s.now())
	if err != nil {
		HandleError(c, s.logger, err, http.StatusInternalServerError, "Failed to load streak")
		return
	}
	HandleSuccess(c, s.logger, http.StatusOK, summary, nil)
}

func (s *Server) handleAgenda(c *gin.Context) {
	q := agendaQuery{Days: service.UpcomingDays}
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, s.logger, err, http.StatusBadRequest, "Invalid query")
		return
	}
	agenda, err := s.tasks.Agenda(c.Request.Context(), s.userID, s.now(), q.Days)
	if err != nil {
		HandleError(c, s.logger, err, http.StatusInternalServerError, "Failed to fetch agenda")
		return
	}
	HandleSuccess(c, s.logger, http.StatusOK, agenda, nil)
}

func (s *Server) handleStats(c *gin.Context) {
	q := statsQuery{Days: defaultStatsDays, Window: defaultCurveWindow}
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, s.logger, err, http.StatusBadRequest, "Invalid query")
		return
	}
	now := s.now()
	report, err := stats.BuildReport(c.Request.Context(), s.store, model.StatsConfig{
		UserID:      s.userID,
		Days:        q.Days,
		CurveWindow: q.Window,
	}, now)
	if err != nil {
		HandleError(c, s.logger, err, http.StatusInternalServerError, "Failed to build stats")
		return
	}
	result := StatsResult{
		Days:  report.Days,
		Tasks: stats.TaskSummary(report.Tasks, now, report.From, now),
	}
	HandleSuccess(c, s.logger, http.StatusOK, result, map[string]any{"days": q.Days, "window": q.Window})
}
