package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasksync/api/handler"
)

type Handlers struct {
	Task     *apiHandler.TaskHandler
	Category *apiHandler.CategoryHandler
	Feed     *apiHandler.FeedHandler
	Draft    *apiHandler.DraftHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.PATCH("/tasks/{id}/status", authMiddleware(handlers.Task.ToggleStatus))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	api.GET("/categories", authMiddleware(handlers.Category.List))
	api.POST("/categories", authMiddleware(handlers.Category.Create))
	api.DELETE("/categories/{id}", authMiddleware(handlers.Category.Delete))

	api.POST("/feeds", authMiddleware(handlers.Feed.Open))
	api.POST("/feeds/{id}/more", authMiddleware(handlers.Feed.More))
	api.POST("/feeds/{id}/tasks/{taskId}/toggle", authMiddleware(handlers.Feed.Toggle))
	api.DELETE("/feeds/{id}", authMiddleware(handlers.Feed.Close))

	api.GET("/drafts/task", authMiddleware(handlers.Draft.Get))
	api.PUT("/drafts/task", authMiddleware(handlers.Draft.Put))
	api.DELETE("/drafts/task", authMiddleware(handlers.Draft.Delete))

	return r
}
