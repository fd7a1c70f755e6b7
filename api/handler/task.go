package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/api/transport"
	"github.com/fastygo/tasksync/domain"
	"github.com/fastygo/tasksync/pkg/httpcontext"
	taskUC "github.com/fastygo/tasksync/usecase/task"
)

type TaskHandler struct {
	baseHandler
	pager        *taskUC.Pager
	gateway      *taskUC.Gateway
	defaultLimit int
}

func NewTaskHandler(pager *taskUC.Pager, gateway *taskUC.Gateway, defaultLimit int, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &TaskHandler{
		baseHandler:  newBaseHandler(adapter, logger),
		pager:        pager,
		gateway:      gateway,
		defaultLimit: defaultLimit,
	}
}

// @Summary List one page of tasks
// @Tags tasks
// @Param priority query string false "low|medium|high"
// @Param status query string false "completed|uncompleted"
// @Param categoryId query string false "category id"
// @Param sortBy query string false "deadline_asc|deadline_desc"
// @Param search query string false "title prefix"
// @Param limit query int false "page size"
// @Param cursor query string false "opaque cursor from meta.nextCursor"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	args := ctx.QueryArgs()
	spec := domain.QuerySpec{
		Priority:    domain.TaskPriority(args.Peek("priority")),
		Status:      domain.TaskStatus(args.Peek("status")),
		CategoryID:  string(args.Peek("categoryId")),
		SortBy:      domain.SortOrder(args.Peek("sortBy")),
		SearchTitle: string(args.Peek("search")),
		Limit:       parseInt(string(args.Peek("limit")), h.defaultLimit),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	cursor, err := domain.DecodeCursor(string(args.Peek("cursor")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	page, err := h.pager.FetchPage(stdCtx, spec, cursor, spec.Limit)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	meta := transport.PageMeta{HasMore: page.HasMore, Mode: page.Mode, Count: len(page.Tasks)}
	if next := page.NextCursor(); next != nil && page.HasMore {
		meta.NextCursor = next.Encode()
	}
	h.respondPage(ctx, page.Tasks, meta)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := req.ToTask("")
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := h.gateway.Create(stdCtx, task); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// @Summary Replace task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := req.ToTask(id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := h.gateway.Update(stdCtx, task); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Toggle completion status
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [patch]
func (h *TaskHandler) ToggleStatus(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.gateway.ToggleStatus(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.gateway.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}
