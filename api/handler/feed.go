package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/api/transport"
	"github.com/fastygo/tasksync/internal/services"
	"github.com/fastygo/tasksync/pkg/httpcontext"
)

// FeedHandler exposes server-held infinite-scroll listings.
type FeedHandler struct {
	baseHandler
	registry     *services.FeedRegistry
	defaultLimit int
}

func NewFeedHandler(registry *services.FeedRegistry, defaultLimit int, adapter *httpcontext.Adapter, logger *zap.Logger) *FeedHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &FeedHandler{
		baseHandler:  newBaseHandler(adapter, logger),
		registry:     registry,
		defaultLimit: defaultLimit,
	}
}

// @Summary Open a feed and load its first page
// @Tags feeds
// @Router /api/v1/feeds [post]
func (h *FeedHandler) Open(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.FeedRequest
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req) {
		return
	}
	spec := req.Spec()
	if spec.Limit <= 0 {
		spec.Limit = h.defaultLimit
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	feed, err := h.registry.Open(userID, spec)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if _, err := feed.Session.LoadMore(stdCtx); err != nil {
		_ = h.registry.Close(userID, feed.ID)
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, feedView(feed))
}

// @Summary Load the next page of a feed
// @Tags feeds
// @Router /api/v1/feeds/{id}/more [post]
func (h *FeedHandler) More(ctx *fasthttp.RequestCtx) {
	feed, ok := h.feed(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := feed.Session.LoadMore(stdCtx); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, feedView(feed))
}

// @Summary Toggle a task inside a feed
// @Tags feeds
// @Router /api/v1/feeds/{id}/tasks/{taskId}/toggle [post]
func (h *FeedHandler) Toggle(ctx *fasthttp.RequestCtx) {
	feed, ok := h.feed(ctx)
	if !ok {
		return
	}
	taskID := h.pathParam(ctx, "taskId")
	if taskID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := feed.Session.ToggleStatus(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Close a feed
// @Tags feeds
// @Router /api/v1/feeds/{id} [delete]
func (h *FeedHandler) Close(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.registry.Close(userID, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

func (h *FeedHandler) feed(ctx *fasthttp.RequestCtx) (*services.Feed, bool) {
	userID := h.userID(ctx)
	if userID == "" {
		return nil, false
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return nil, false
	}
	feed, err := h.registry.Get(userID, id)
	if err != nil {
		stdCtx, cancel := h.requestContext(ctx)
		defer cancel()
		h.respondError(ctx, stdCtx, err)
		return nil, false
	}
	return feed, true
}

func feedView(feed *services.Feed) transport.FeedView {
	return transport.FeedView{
		ID:      feed.ID,
		Spec:    feed.Session.Spec(),
		Tasks:   feed.Session.Tasks(),
		HasMore: feed.Session.HasMore(),
		Mode:    feed.Session.Mode(),
	}
}
