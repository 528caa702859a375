package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	myPostgres "github.com/Velmor/DuoChat/chat-service/internal/adapters/db/postgres"
	myRedis "github.com/Velmor/DuoChat/chat-service/internal/adapters/db/redis"
	"github.com/Velmor/DuoChat/chat-service/internal/adapters/mail"
	myHTTP "github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http"
	httpmw "github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/middleware"
	accountsvc "github.com/Velmor/DuoChat/chat-service/internal/app/account"
	chatsvc "github.com/Velmor/DuoChat/chat-service/internal/app/chat"
	appjwt "github.com/Velmor/DuoChat/chat-service/internal/app/jwt"
	"github.com/Velmor/DuoChat/chat-service/internal/infra/config"
	lg "github.com/Velmor/DuoChat/chat-service/internal/infra/log"
	"github.com/Velmor/DuoChat/chat-service/internal/infra/migrate"
	"github.com/Velmor/DuoChat/chat-service/internal/infra/server"
	"golang.org/x/sync/errgroup"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := validator.New()
	_ = validate.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		pwd := fl.Field().String()
		var hasUpper, hasDigit bool
		for _, r := range pwd {
			if unicode.IsUpper(r) {
				hasUpper = true
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
		return utf8.RuneCountInString(pwd) >= 8 && hasUpper && hasDigit
	})

	userRepo := myPostgres.NewPostgresUserRepo(db)
	chatRepo := myPostgres.NewPostgresChatRepo(db)
	msgRepo := myPostgres.NewPostgresMessageRepo(db)
	codeRepo := myRedis.NewRedisCodeRepo(redisCli, cfg.VerificationCodeTTL)

	dispatcher := mail.NewDispatcher(mail.NewSMTPSender(cfg), cfg.MailWorkers, cfg.MailQueueSize, zapLog)
	defer dispatcher.Close()

	tokenUtil, err := appjwt.NewTokenUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init token util", zap.Error(err))
	}

	accounts := accountsvc.New(userRepo, codeRepo, dispatcher, tokenUtil, cfg, validate, zapLog)
	chats := chatsvc.New(chatRepo, msgRepo, userRepo, dispatcher, validate)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(httpmw.NewRateLimitPerIP(50, 100, 10_000, time.Hour))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	myHTTP.NewHandler(accounts, chats, tokenUtil, zapLog).Register(router)

	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg, router, zapLog)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
