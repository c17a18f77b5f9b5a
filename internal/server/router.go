package server

import (
	"net/http"

	"issue-tracker/internal/assignment"
	"issue-tracker/internal/config"
	"issue-tracker/internal/database"
	"issue-tracker/internal/handlers"
	"issue-tracker/internal/issuequery"
	"issue-tracker/internal/mailer"
	"issue-tracker/internal/middleware"
	"issue-tracker/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handlers.Init(
		assignment.New(database.DB, mailer.FromConfig(cfg)),
		issuequery.New(database.DB),
		cfg.UploadDir,
	)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("tracker_session", store))

	r.Use(middleware.InjectUser())

	// uploaded files, referenced by filename only
	r.Static("/files", cfg.UploadDir)

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)
	api.GET("/auth/logout", handlers.Logout)

	auth := api.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/auth/me", handlers.Me)

	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// ACCOUNTS
	auth.GET("/accounts", handlers.ListAccounts)
	auth.GET("/accounts/:id", handlers.GetAccount)
	auth.POST("/accounts", adminOnly, handlers.CreateAccount)
	auth.PUT("/accounts/:id", adminOnly, handlers.UpdateAccount)
	auth.PUT("/accounts/promote/:id", adminOnly, handlers.PromoteAccount)
	auth.DELETE("/accounts/:id", adminOnly, handlers.DeleteAccount)

	// PROJECTS
	auth.GET("/projects", handlers.ListProjects)
	auth.GET("/projects/:id", handlers.GetProject)
	auth.POST("/projects", adminOnly, handlers.CreateProject)
	auth.PUT("/projects/:id", adminOnly, handlers.UpdateProject)
	auth.DELETE("/projects/:id", adminOnly, handlers.DeleteProject)

	// ISSUES
	auth.GET("/issues", handlers.ListIssues)
	auth.GET("/issues/with-employees", handlers.ListIssuesWithEmployees)
	auth.GET("/issues/:id", handlers.GetIssue)
	auth.POST("/issues/create/:projectId", handlers.CreateIssue)
	auth.PUT("/issues/update/:id", handlers.UpdateIssue)
	auth.PUT("/issues/status/:id", handlers.UpdateIssueStatus)
	auth.GET("/issues/status/:id", handlers.GetIssueStatus)
	auth.POST("/issues/comment/:id", handlers.AddComment)
	auth.GET("/issues/comments/:id", handlers.ListComments)
	auth.GET("/issues/project/:projectId", handlers.ListIssuesByProject)
	auth.DELETE("/issues/:id", adminOnly, handlers.DeleteIssue)

	// ASSIGNMENT
	auth.PUT("/issues/assign/:id", adminOnly, handlers.AssignIssue)
	auth.PUT("/issues/remove-employee/:id", adminOnly, handlers.RemoveEmployee)
	auth.PUT("/issues/clear-assignment/:id", adminOnly, handlers.ClearAssignment)
	auth.GET("/issues/assignment/:id", handlers.GetAssignment)

	// AUDIT
	auth.GET("/audit", adminOnly, handlers.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
