// Package server wires repositories, services and handlers into the HTTP route table.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/gorm"
)

// Deps holds everything the route table needs.
type Deps struct {
	Config         *config.Config
	SessionStore   sessions.Store
	AuthService    *services.AuthService
	ProjectService *services.ProjectService
	TaskService    *services.TaskService
	UserService    *services.UserService
}

// NewDeps builds the repositories and services on top of db.
// The task suggester is only enabled when an OpenAI key is configured.
func NewDeps(cfg *config.Config, db *gorm.DB, store sessions.Store) Deps {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	}

	return Deps{
		Config:         cfg,
		SessionStore:   store,
		AuthService:    services.NewAuthService(userRepo, tokenRepo),
		ProjectService: services.NewProjectService(projectRepo, userRepo),
		TaskService:    services.NewTaskService(taskRepo, projectRepo, userRepo, suggester),
		UserService:    services.NewUserService(userRepo),
	}
}

// NewSessionStore creates the session store named by cfg.SessionStore.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = s
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, d.SessionStore))

	authHandler := handlers.NewAuthHandler(d.AuthService)
	projectHandler := handlers.NewProjectHandler(d.ProjectService)
	taskHandler := handlers.NewTaskHandler(d.TaskService)
	userHandler := handlers.NewUserHandler(d.UserService)

	requireAuth := middleware.RequireAuth(d.AuthService)
	projectAccess := middleware.RequireProjectAccess(d.ProjectService)
	taskAccess := middleware.RequireTaskAccess(d.TaskService)

	// Session login for browser clients
	apiAuth := r.Group("/api-auth")
	{
		apiAuth.POST("/login/", authHandler.Login)
		apiAuth.POST("/logout/", authHandler.Logout)
	}

	api := r.Group("/api")
	{
		api.GET("/health/", handlers.Health(d.Config.ServiceName))

		// Public
		api.POST("/auth/", authHandler.ObtainToken)
		api.POST("/register/", authHandler.Register)

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("/", projectHandler.ListProjects)
			projects.POST("/", projectHandler.CreateProject)
			projects.GET("/:id/", projectAccess, projectHandler.GetProject)
			projects.PATCH("/:id/", projectAccess, projectHandler.UpdateProject)
			projects.PUT("/:id/", projectAccess, projectHandler.ReplaceProject)
			projects.DELETE("/:id/", projectAccess, projectHandler.DeleteProject)
			projects.POST("/:id/add_user/", projectAccess, projectHandler.AddUser)
			projects.POST("/:id/remove_user/", projectAccess, projectHandler.RemoveUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/", taskHandler.ListTasks)
			tasks.POST("/", taskHandler.CreateTask)
			tasks.POST("/suggest/", taskHandler.SuggestTasks)
			tasks.GET("/:id/", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id/", taskAccess, taskHandler.UpdateTask)
			tasks.PUT("/:id/", taskAccess, taskHandler.ReplaceTask)
			tasks.DELETE("/:id/", taskAccess, taskHandler.DeleteTask)
		}

		users := api.Group("/users")
		users.Use(requireAuth, middleware.RequireStaff())
		{
			users.GET("/", userHandler.ListUsers)
			users.GET("/:id/", userHandler.GetUser)
		}
	}

	return r
}

// WithCORS wraps the engine so browser frontends on the configured origins can call the API.
func WithCORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", constants.RequestIDHeader},
		ExposedHeaders:   []string{constants.TotalCountHeader, constants.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(h)
}
