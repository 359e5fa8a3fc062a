// Package main BookHub API.
//
// @title           BookHub API
// @version         1.0
// @description     Book lending/sales service (catalogue, borrow/return/purchase ledger, reviews, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"bookhub/app/echoServer"
	authctrl "bookhub/app/echoServer/controller/auth"
	bookctrl "bookhub/app/echoServer/controller/book"
	reviewctrl "bookhub/app/echoServer/controller/review"
	txnctrl "bookhub/app/echoServer/controller/transaction"
	"bookhub/app/echoServer/validation"
	"bookhub/config"
	bookrepo "bookhub/repository/book"
	cacherepo "bookhub/repository/cache"
	reviewrepo "bookhub/repository/review"
	txnrepo "bookhub/repository/transaction"
	userrepo "bookhub/repository/user"
	authsvc "bookhub/service/auth"
	booksvc "bookhub/service/book"
	ledgersvc "bookhub/service/ledger"
	reviewsvc "bookhub/service/review"
	"bookhub/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	tr := txnrepo.New(db)
	rr := reviewrepo.New(db)

	// idempotency cache is optional
	var cache booksvc.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("bad REDIS_URL", "err", err)
			os.Exit(1)
		}
		cache = cacherepo.New(redis.NewClient(opts))
	}

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	ledger := ledgersvc.New(tr, log)
	bs := booksvc.New(db, br, ur, ledger, cache)
	rs := reviewsvc.New(rr, ur, br)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	reviewC := &reviewctrl.Controller{Svc: rs, V: v, Log: log}
	txnC := &txnctrl.Controller{Svc: ledger, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Book:   bookC,
		Review: reviewC,
		Txn:    txnC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
