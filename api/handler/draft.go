package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasksync/api/transport"
	"github.com/fastygo/tasksync/pkg/httpcontext"
	draftUC "github.com/fastygo/tasksync/usecase/draft"
)

type DraftHandler struct {
	baseHandler
	uc *draftUC.UseCase
}

func NewDraftHandler(uc *draftUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DraftHandler {
	return &DraftHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Load the saved task draft
// @Tags drafts
// @Router /api/v1/drafts/task [get]
func (h *DraftHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, err := h.uc.Load(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, draft)
}

// @Summary Save the task draft
// @Tags drafts
// @Router /api/v1/drafts/task [put]
func (h *DraftHandler) Put(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.DraftRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, err := h.uc.Save(stdCtx, userID, req.Draft())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, draft)
}

// @Summary Discard the task draft
// @Tags drafts
// @Router /api/v1/drafts/task [delete]
func (h *DraftHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Clear(stdCtx, userID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}
