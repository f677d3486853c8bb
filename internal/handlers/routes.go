package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/middleware"
	"github.com/localnerve/paperdb/internal/services"
)

// Register mounts the API under /api. Every API route requires a session;
// role checks happen in the workflow engine.
func Register(app *fiber.App, engine *services.Engine, sessions services.SessionValidator) {
	papers := &PaperHandler{Engine: engine}
	reviews := &ReviewHandler{Engine: engine}
	assoc := &AssociationHandler{Engine: engine}
	queries := &QueryHandler{Engine: engine}
	users := &UserHandler{Engine: engine}

	api := app.Group("/api", middleware.VersionMiddleware(), middleware.RequireSession(sessions))

	api.Post("/papers", papers.CreatePaper)
	api.Post("/papers/bulk", papers.BulkImport)
	api.Get("/papers/:id", papers.GetPaper)
	api.Delete("/papers/:id", papers.DeletePaper)
	api.Get("/papers/:id/versions", papers.ListVersions)
	api.Post("/papers/:id/versions", papers.SubmitVersion)
	api.Post("/papers/:id/versions/:version/reviews", reviews.AssignReviewer)
	api.Post("/papers/:id/citations", assoc.AddCitation)
	api.Post("/papers/:id/tags", assoc.TagPaper)
	api.Delete("/papers/:id/tags/:tag", assoc.UntagPaper)

	api.Post("/reviews/:id/outcome", reviews.RecordOutcome)

	api.Get("/search", queries.Search)
	api.Get("/stats/most-cited", queries.MostCited)
	api.Get("/stats/active-reviewers", queries.ActiveReviewers)
	api.Get("/audit", queries.AuditTrail)

	api.Post("/users", users.RegisterUser)
	api.Put("/users/:id/roles/:role", users.GrantRole)
	api.Delete("/users/:id/roles/:role", users.RevokeRole)
}
