package bootstrap

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/issuedesk/issuedesk-backend/internal/api/http"
	"github.com/issuedesk/issuedesk-backend/internal/api/http/middleware"
	"github.com/issuedesk/issuedesk-backend/internal/auth"
	"github.com/issuedesk/issuedesk-backend/internal/issues"
	"github.com/issuedesk/issuedesk-backend/internal/projects"
	"github.com/issuedesk/issuedesk-backend/internal/users"

	"github.com/issuedesk/issuedesk-backend/config"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())

	// Credentialed CORS: the session cookie only travels when the
	// browser trusts the origin explicitly.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(dep.Cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	secret := []byte(dep.Cfg.Auth.JWTSecret)
	cookies := auth.NewCookiePolicy(
		dep.Cfg.Auth.CookieDomain,
		int(dep.Cfg.Auth.CookieTTL.Seconds()),
		dep.Cfg.Production(),
	)

	userRepo := users.NewRepo(dep.DB)
	projectRepo := projects.NewRepo(dep.DB)
	issueRepo := issues.NewRepo(dep.DB)

	api := r.Group("/api")

	authHandler := auth.NewHandler(userRepo, auth.NewThrottle(dep.Redis), cookies, secret, dep.Cfg.Auth.TokenTTL)
	authHandler.Register(api.Group("/auth"))

	protected := api.Group("")
	protected.Use(auth.RequireAuth(secret))

	projects.Register(protected.Group("/projects"), projectRepo)
	issues.Register(protected.Group("/issues"), issueRepo, projectRepo.OwnerOf)

	return r
}
