package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/tcgarena/tournament-api/docs"
	v1 "github.com/tcgarena/tournament-api/internal/api/handler/v1"
	"github.com/tcgarena/tournament-api/internal/api/middleware"
	"github.com/tcgarena/tournament-api/internal/config"
	"github.com/tcgarena/tournament-api/internal/notification"
	"github.com/tcgarena/tournament-api/internal/repository"
	"github.com/tcgarena/tournament-api/internal/repository/dao"
	"github.com/tcgarena/tournament-api/internal/service"
)

type Server struct {
	Config    *config.AppConfig
	Router    *gin.Engine
	Lifecycle *service.TournamentLifecycleService
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	hub := notification.NewHub()

	tournamentRepo := repository.NewTournamentRepository(dao.NewTournamentDAO(db))
	registrationRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	deckRepo := repository.NewDeckRepository(dao.NewDeckDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))

	lifecycleSvc := service.NewTournamentLifecycleService(tournamentRepo, hub)
	registrationSvc := service.NewRegistrationService(registrationRepo, tournamentRepo, deckRepo, hub)
	userSvc := service.NewUserService(userRepo)

	s.Lifecycle = lifecycleSvc

	tournamentHandler := v1.NewTournamentHandler(lifecycleSvc, userSvc)
	registrationHandler := v1.NewRegistrationHandler(registrationSvc, lifecycleSvc, userSvc)
	notificationHandler := v1.NewNotificationHandler(hub, userSvc)
	userHandler := v1.NewUserHandler(userSvc)

	s.MountHandlers(tournamentHandler, registrationHandler, notificationHandler, userHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	tournamentHandler *v1.TournamentHandler,
	registrationHandler *v1.RegistrationHandler,
	notificationHandler *v1.NotificationHandler,
	userHandler *v1.UserHandler,
) {
	const basePath = "/api/v1"

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/tournaments", tournamentHandler.HandleListTournaments)
		authed.GET("/tournaments/:tournamentID", tournamentHandler.HandleGetTournament)
		authed.POST("/tournaments", tournamentHandler.HandleCreateTournament)
		authed.PUT("/tournaments/:tournamentID", tournamentHandler.HandleUpdateTournament)
		authed.DELETE("/tournaments/:tournamentID", tournamentHandler.HandleDeleteTournament)
		authed.POST("/tournaments/sweep", tournamentHandler.HandleSweep)
		authed.POST("/tournaments/:tournamentID/approve", tournamentHandler.HandleApproveTournament)
		authed.POST("/tournaments/:tournamentID/reject", tournamentHandler.HandleRejectTournament)

		authed.POST("/tournaments/:tournamentID/registrations", registrationHandler.HandleRegister)
		authed.DELETE("/tournaments/:tournamentID/registrations", registrationHandler.HandleUnregister)
		authed.DELETE("/tournaments/:tournamentID/registrations/:userID", registrationHandler.HandleUnregisterUser)
		authed.GET("/tournaments/:tournamentID/registrations", registrationHandler.HandleListTournamentRegistrations)
		authed.GET("/registrations", registrationHandler.HandleListAllRegistrations)
		authed.GET("/users/me/registrations", registrationHandler.HandleListMyRegistrations)

		authed.GET("/users/me/notifications", notificationHandler.HandleGetMyNotifications)
		authed.GET("/users/:userID", userHandler.HandleGetUser)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "TCG Tournament API"
	docs.SwaggerInfo.Description = "Tournament lifecycle and registration admission API for trading card games."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
