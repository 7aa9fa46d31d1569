package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/config"
	"peerlearn.app/server/internal/handler"
	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/internal/metrics"
	"peerlearn.app/server/internal/middleware"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/internal/session"
	"peerlearn.app/server/internal/signup"
	"peerlearn.app/server/internal/worker"
	"peerlearn.app/server/pkg/storage"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	roomWorker  *worker.RoomWorker
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	roomRepo := repository.NewStudyRoomRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.L().Warn("cloudinary storage unavailable, avatar uploads disabled", zap.Error(err))
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewSearchService(meiliClient)

	sessions := session.NewManager(redisClient, cfg.JWTSecret, cfg.SessionTTL)
	flowStore := signup.NewRedisFlowStore(redisClient, cfg.SignupFlowTTL)

	authSvc := service.NewAuthService(accountRepo, profileRepo, sessions, searchSvc, cfg)
	signupSvc := service.NewSignupService(flowStore, authSvc, profileRepo, searchSvc, cfg.IsDevelopment())
	profileSvc := service.NewProfileService(profileRepo, imageStorage, searchSvc)
	roomSvc := service.NewStudyRoomService(roomRepo)
	noteSvc := service.NewNoteService(noteRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	connectionSvc := service.NewConnectionService(connectionRepo, profileRepo, notificationSvc)
	dashboardSvc := service.NewDashboardService(profileSvc, connectionRepo, roomRepo, notificationRepo)

	secureCookies := !cfg.IsDevelopment()
	authHandler := handler.NewAuthHandler(authSvc, cfg.SessionTTL, secureCookies)
	signupHandler := handler.NewSignupHandler(signupSvc, cfg.SignupFlowTTL, secureCookies)
	profileHandler := handler.NewProfileHandler(profileSvc, searchSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, profileSvc)
	roomHandler := handler.NewStudyRoomHandler(roomSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	connectionHandler := handler.NewConnectionHandler(connectionSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)
	pageHandler := handler.NewPageHandler()

	roomWorker := worker.NewRoomWorker(roomRepo)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())

	metrics.MustRegister()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// page routes run through the access gate
	gate := middleware.NewGate(sessions)
	pages := router.Group("")
	pages.Use(gate.Handle())
	{
		pages.GET("/", pageHandler.Landing)
		pages.GET("/auth/login", pageHandler.Login)
		pages.GET("/auth/signup", pageHandler.Signup)
		pages.GET("/dashboard", pageHandler.Dashboard)
		pages.GET("/profile", pageHandler.Profile)
		pages.GET("/study-rooms", pageHandler.StudyRooms)
		pages.GET("/notes", pageHandler.Notes)
		pages.GET("/quizzes", pageHandler.Quizzes)
	}

	authMiddleware := middleware.NewAuthMiddleware(sessions)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/verify-email", authHandler.VerifyEmail)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)

		auth.POST("/signup/start", signupHandler.Start)
		auth.POST("/signup/identity", signupHandler.Identity)
		auth.POST("/signup/back", signupHandler.Back)
		auth.GET("/signup/state", signupHandler.State)
		auth.POST("/signup/complete", signupHandler.Complete)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		protected.GET("/profile/me", profileHandler.GetMyProfile)
		protected.GET("/profile/:id", profileHandler.GetProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)
		protected.GET("/peers/search", profileHandler.SearchPeers)

		protected.POST("/study-rooms", roomHandler.CreateRoom)
		protected.GET("/study-rooms", roomHandler.ListUpcoming)
		protected.GET("/study-rooms/me", roomHandler.ListMine)
		protected.GET("/study-rooms/:id", roomHandler.GetRoom)
		protected.DELETE("/study-rooms/:id", roomHandler.CancelRoom)

		protected.POST("/notes", noteHandler.CreateNote)
		protected.GET("/notes", noteHandler.ListNotes)
		protected.GET("/notes/me", noteHandler.ListMine)
		protected.GET("/notes/:id", noteHandler.GetNote)
		protected.POST("/notes/:id/download", noteHandler.Download)

		protected.POST("/connections", connectionHandler.RequestConnection)
		protected.GET("/connections", connectionHandler.ListConnections)
		protected.PUT("/connections/:id/accept", connectionHandler.AcceptConnection)
		protected.PUT("/connections/:id/decline", connectionHandler.DeclineConnection)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		roomWorker:  roomWorker,
	}
}

func (s *Server) Run(addr string) error {
	if err := s.roomWorker.Start(); err != nil {
		return err
	}
	defer s.roomWorker.Stop()

	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
