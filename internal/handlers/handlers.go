package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"billed/api/internal/config"
	"billed/api/internal/middleware"
	"billed/api/internal/models"
	"billed/api/internal/repository"
	"billed/api/internal/routes"
	"billed/api/internal/service"
	"billed/api/internal/storage"
)

// The handler set talks to the workflow services through these interfaces
// so tests can swap in fakes.
type AuthAPI interface {
	Register(ctx context.Context, input service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type BillsAPI interface {
	List(ctx context.Context, viewer models.UserRecord) ([]models.DisplayBill, error)
	ReceiptURL(ctx context.Context, id string, viewer models.UserRecord) (string, error)
	Review(ctx context.Context, id string, status models.BillStatus, commentAdmin string) error
}

type NewBillAPI interface {
	CreateDraft(ctx context.Context, email string, fileName string, data []byte) (service.DraftResult, error)
	Submit(ctx context.Context, key string, email string, input service.SubmitInput) (models.Bill, error)
	Post(ctx context.Context, bill models.Bill) (models.Bill, error)
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     AuthAPI
	bills    BillsAPI
	newBills NewBillAPI
	locker   middleware.SubmitLocker
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	billRepo := repository.NewBillRepository(db)
	tracker := service.NewRedisUploadTracker(cache)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	bills := service.NewBillListService(billRepo, cfg.Security.SignatureSecret, log)
	newBills := service.NewNewBillService(billRepo, store, tracker, cfg.Security.SignatureSecret, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		bills:    bills,
		newBills: newBills,
		locker:   middleware.NewRedisSubmitLocker(cache, cfg.Security.SubmitLockTTL),
		users:    userRepo,
		sessions: sessionRepo,
		db:       db,
		cache:    cache,
	}
}

// Register wires the route table. Every gated group goes through the same
// session resolution and its view's role gate; unregistered paths fall
// through to gin's 404 and never render anything.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(h.cfg, h.users, h.sessions))

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	v1.GET("/navigation", h.Navigation)

	bills := v1.Group("/bills")
	{
		list := bills.Group("")
		list.Use(middleware.RequireView(routes.ViewBills))
		list.GET("", h.ListBills)
		list.GET("/:id/receipt", h.ReceiptPreview)

		create := bills.Group("")
		create.Use(middleware.RequireView(routes.ViewNewBill))
		create.GET("/new", h.NewBillForm)
		create.POST("", h.UploadReceipt)
		create.POST("/record", h.PostBill)
		create.PATCH("/:id", middleware.SubmitLock(h.locker, h.log), h.SubmitBill)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireView(routes.ViewDashboard))
	{
		admin.GET("/bills", h.AdminListBills)
		admin.PATCH("/bills/:id", h.ReviewBill)
	}
}
