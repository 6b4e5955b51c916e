package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sabirama/tutorial-hub-sub000/internal/config"
	"github.com/sabirama/tutorial-hub-sub000/internal/handlers"
	"github.com/sabirama/tutorial-hub-sub000/internal/middleware"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
	chatws "github.com/sabirama/tutorial-hub-sub000/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	parentProfileRepo := repository.NewParentProfileRepository(db)
	tutorProfileRepo := repository.NewTutorProfileRepository(db)
	tutorSubjectRepo := repository.NewTutorSubjectRepository(db)
	childRepo := repository.NewChildRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)

	storageService := services.NewLocalStorageService(cfg.UploadDir)

	authService := services.NewAuthService(db, accountRepo, parentProfileRepo, tutorProfileRepo, tokenRepo, cfg.JWTSecret, cfg.TokenTTL)
	sessionService := services.NewSessionService(db, sessionRepo, accountRepo, childRepo, subjectRepo)
	chatService := services.NewChatService(db, conversationRepo, messageRepo, accountRepo)
	ratingService := services.NewRatingService(db, ratingRepo, accountRepo)
	relationshipService := services.NewRelationshipService(relationshipRepo, accountRepo, subjectRepo)
	directoryService := services.NewDirectoryService(tutorProfileRepo, tutorSubjectRepo)

	chatHub := chatws.NewHub()
	go chatHub.Run()

	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(parentProfileRepo, tutorProfileRepo, tutorSubjectRepo, storageService)
	childHandler := handlers.NewChildHandler(childRepo)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, tokenRepo, cfg.JWTSecret)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipService)
	subjectHandler := handlers.NewSubjectHandler(subjectRepo)
	adminHandler := handlers.NewAdminHandler(accountRepo, tokenRepo)

	api := app.Group("/api", middleware.AppKeyRequired(cfg.AppKey))

	parents := api.Group("/parents")
	parents.Post("/register", authHandler.RegisterParent)
	parents.Post("/login", authHandler.LoginParent)

	tutors := api.Group("/tutors")
	tutors.Post("/register", authHandler.RegisterTutor)
	tutors.Post("/login", authHandler.LoginTutor)

	api.Post("/admin/login", authHandler.LoginAdmin)

	authed := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret, tokenRepo))

	auth := authed.Group("/auth")
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", authHandler.Me)

	parentOnly := middleware.RoleRequired(models.RoleParent)
	tutorOnly := middleware.RoleRequired(models.RoleTutor)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	parentArea := authed.Group("/parents")
	parentArea.Get("/profile", parentOnly, profileHandler.GetParentProfile)
	parentArea.Put("/profile", parentOnly, profileHandler.UpdateParentProfile)
	parentArea.Post("/profile/avatar", parentOnly, profileHandler.UploadParentAvatar)
	parentArea.Post("/children", parentOnly, childHandler.CreateChild)
	parentArea.Get("/children", parentOnly, childHandler.ListChildren)
	parentArea.Get("/children/:id", parentOnly, childHandler.GetChild)
	parentArea.Put("/children/:id", parentOnly, childHandler.UpdateChild)
	parentArea.Delete("/children/:id", parentOnly, childHandler.DeleteChild)

	tutorArea := authed.Group("/tutors")
	tutorArea.Get("/profile", tutorOnly, profileHandler.GetTutorProfile)
	tutorArea.Put("/profile", tutorOnly, profileHandler.UpdateTutorProfile)
	tutorArea.Post("/profile/avatar", tutorOnly, profileHandler.UploadTutorAvatar)
	tutorArea.Post("/profile/subjects", tutorOnly, profileHandler.AddTutorSubject)
	tutorArea.Delete("/profile/subjects/:subjectId", tutorOnly, profileHandler.RemoveTutorSubject)
	tutorArea.Get("", directoryHandler.ListTutors)
	tutorArea.Get("/recommended", parentOnly, directoryHandler.GetRecommendedTutors)
	tutorArea.Get("/:id", directoryHandler.GetTutor)
	tutorArea.Get("/:id/ratings", ratingHandler.ListTutorRatings)

	sessions := authed.Group("/sessions")
	sessions.Post("", parentOnly, sessionHandler.CreateSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Put("/:id/status", sessionHandler.UpdateSessionStatus)
	sessions.Put("/:id/reschedule", sessionHandler.RescheduleSession)

	conversations := authed.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.ListMessages)
	conversations.Post("/:id/messages", chatHandler.SendMessage)

	authed.Post("/ratings", ratingHandler.SubmitRating)
	authed.Get("/parents/:id/ratings", ratingHandler.ListParentRatings)

	relationships := authed.Group("/relationships")
	relationships.Post("", parentOnly, relationshipHandler.CreateRelationship)
	relationships.Get("", relationshipHandler.ListRelationships)
	relationships.Put("/:id/status", relationshipHandler.UpdateRelationshipStatus)

	subjects := authed.Group("/subjects")
	subjects.Get("", subjectHandler.ListSubjects)
	subjects.Get("/:id", subjectHandler.GetSubject)

	admin := authed.Group("/admin", adminOnly)
	admin.Get("/accounts", adminHandler.ListAccounts)
	admin.Put("/accounts/:id/status", adminHandler.UpdateAccountStatus)
	admin.Put("/accounts/:id/verify", adminHandler.VerifyAccount)
	admin.Post("/accounts/:id/reset-password", adminHandler.ResetAccountPassword)
	admin.Post("/subjects", subjectHandler.CreateSubject)
	admin.Put("/subjects/:id", subjectHandler.UpdateSubject)
	admin.Delete("/subjects/:id", subjectHandler.DeleteSubject)

	// The socket route sits outside /v1 so the handshake can authenticate
	// with a query-string token instead of the Authorization header.
	api.Use("/ws", chatHandler.WebSocketAuth)
	api.Get("/ws", websocket.New(chatHandler.HandleWebSocket))
}
