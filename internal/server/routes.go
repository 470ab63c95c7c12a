// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	// Init swagger doc
	_ "JobPortal-backend/docs"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/controller/admin"
	"JobPortal-backend/internal/controller/application"
	"JobPortal-backend/internal/controller/company"
	"JobPortal-backend/internal/controller/file"
	"JobPortal-backend/internal/controller/jobpost"
	"JobPortal-backend/internal/controller/portfolio"
	"JobPortal-backend/internal/controller/society"
	"JobPortal-backend/internal/controller/user"
	"JobPortal-backend/internal/guard"
	"JobPortal-backend/internal/middleware"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// multipartOverhead is allowed on top of the upload limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "If-Match"},
		ExposeHeaders:    []string{"ETag", "Retry-After"},
		AllowCredentials: true,
	}))

	gAuth := auth.NewOauthLoginHandler(s.DB, auth.NewGoogleOauthConfig(s.Config), auth.GoogleUserInfoEndpoint)
	lAuth := auth.NewLocalAuthHandler(s.DB)
	logout := auth.NewLogoutController(s.Blacklist)

	files := file.NewFileController(s.DB, s.Storage)
	users := user.NewUserController(s.DB, files, s.Config.MaxUploadBytes)
	// listings and submissions judge openness with the same rule and clock
	companies := company.NewCompanyController(s.DB, s.Workflow.Rule())
	companies.Now = s.Workflow.Now
	societies := society.NewSocietyController(s.DB)
	portfolios := portfolio.NewPortfolioController(s.DB, files, s.Config.MaxUploadBytes)
	positions := jobpost.NewPositionController(s.DB, s.Workflow.Rule())
	positions.Now = s.Workflow.Now
	applications := application.NewApplicationController(s.DB, s.Workflow)
	admins := admin.NewAdminController(s.DB)

	uploadLimit := middleware.SizeLimit(s.Config.MaxUploadBytes + multipartOverhead)
	limiter := middleware.RateLimiterMiddleware(s.Config.RateLimitPerSec, s.Redis)

	r.GET("/health", s.healthHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1", middleware.SafeHeader())
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("google/employer", limiter, gAuth.EmployerGoogleLoginHandler)
			authRoute.POST("google/applicant", limiter, gAuth.ApplicantGoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)

			authRoute.POST("login", limiter, lAuth.LocalLoginHandler)
			authRoute.POST("register", limiter, lAuth.LocalRegisterHandler)
			authRoute.POST("logout", middleware.JwtBlacklistCheck(s.Blacklist), logout.LogoutHandler)
		}
		v1.POST("/session", limiter, lAuth.LocalLoginHandler)

		needAuth := v1.Group("")
		needAuth.Use(middleware.JwtBlacklistCheck(s.Blacklist), middleware.RequireAuth(s.DB), limiter)
		{
			needAuth.GET("/auth/me", lAuth.MeHandler)
			needAuth.GET("/files/:id", files.GetFile)

			userRoute := needAuth.Group("/users")
			{
				userRoute.GET("/:id", users.GetUser)
				userRoute.PUT("/:id", uploadLimit, users.UpdateUser)
			}

			companyRoute := needAuth.Group("/companies")
			{
				companyRoute.GET("", companies.GetCompanies)
				companyRoute.GET("/:id", companies.GetCompanyByID)
				companyRoute.PUT("/:id", middleware.CheckRole(model.RoleEmployer), companies.EditCompany)
			}

			societyRoute := needAuth.Group("/societies")
			{
				societyRoute.GET("", societies.GetSocieties)
				societyRoute.GET("/:id", societies.GetSociety)
				societyRoute.PUT("/:id", middleware.CheckRole(model.RoleApplicant), societies.EditSociety)
			}

			portfolioRoute := needAuth.Group("/portfolio-items")
			{
				portfolioRoute.GET("", portfolios.GetItems)
				portfolioRoute.Use(middleware.CheckRole(model.RoleApplicant))
				portfolioRoute.POST("", uploadLimit, portfolios.CreateItem)
				portfolioRoute.PUT("/:id", uploadLimit, portfolios.UpdateItem)
				portfolioRoute.DELETE("/:id", portfolios.DeleteItem)
			}

			positionRoute := needAuth.Group("/positions")
			{
				positionRoute.GET("", positions.GetPositions)
				positionRoute.GET("/:id", positions.GetPositionByID)
				positionRoute.POST("/:id/apply", middleware.CheckRole(model.RoleApplicant), applications.Apply)
				positionRoute.POST("", middleware.CheckRole(model.RoleEmployer), positions.CreatePosition)
				positionRoute.PUT("/:id", middleware.CheckRole(model.RoleEmployer), positions.EditPosition)
				positionRoute.DELETE("/:id", middleware.CheckRole(model.RoleEmployer, model.RoleAdmin), positions.DeletePosition)
			}

			applicationRoute := needAuth.Group("/applications")
			{
				applicationRoute.GET("", applications.GetApplications)
				applicationRoute.GET("/summary", middleware.CheckRole(model.RoleEmployer), applications.GetSummary)
				applicationRoute.GET("/:id/history", applications.GetHistory)
				applicationRoute.PATCH("/:id/status", middleware.CheckRole(model.RoleEmployer), applications.UpdateStatus)
				applicationRoute.PUT("/:id/override", middleware.CheckRole(model.RoleAdmin), applications.Override)
			}

			adminRoute := needAuth.Group("/admin", middleware.CheckRole(model.RoleAdmin))
			{
				adminRoute.GET("/users", admins.GetUsers)
				adminRoute.DELETE("/users/:id", admins.DeleteUser)
			}
		}
	}

	if s.Config.FrontendDir != "" {
		r.NoRoute(guard.EdgeGuard(guard.DefaultEdgeRules()), frontendHandler(s.Config.FrontendDir))
	} else {
		r.NoRoute(notFound)
	}

	return r
}

func (s *MyServer) healthHandler(c *gin.Context) {
	stats := s.DB.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Not found"})
}

// frontendHandler serves the built web frontend from dir. Unknown page paths
// fall back to index.html so client side routing works.
func frontendHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}

		clean := filepath.Clean("/" + path)
		for _, candidate := range []string{clean, clean + ".html", filepath.Join(clean, "index.html")} {
			full := filepath.Join(dir, candidate)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				c.File(full)
				return
			}
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			notFound(c)
			return
		}
		c.File(index)
	}
}
