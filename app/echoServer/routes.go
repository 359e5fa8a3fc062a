package echoServer

import (
	"net/http"

	"bookhub/app/echoServer/controller/auth"
	"bookhub/app/echoServer/controller/book"
	"bookhub/app/echoServer/controller/review"
	"bookhub/app/echoServer/controller/transaction"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Review    *review.Controller
	Txn       *transaction.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// claims extraction: user_id / email / role into context
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj := ctx.Get("user")
			if tokenObj == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			tok, ok := tokenObj.(*jwt.Token)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			email, _ := claims["email"].(string)
			if email == "" {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			role, _ := claims["role"].(string)

			ctx.Set("user_id", int64(sub))
			ctx.Set("email", email)
			ctx.Set("role", role)
			return next(ctx)
		}
	})

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/search", c.Book.Search)
	authed.GET("/books/:id", c.Book.Detail)
	// Admin endpoints
	authed.POST("/books", c.Book.Create)
	authed.PUT("/books/:id", c.Book.Edit)
	authed.DELETE("/books/:id", c.Book.Delete)

	// Inventory operations
	authed.POST("/books/:id/borrow", c.Book.Borrow)
	authed.POST("/books/:id/return", c.Book.Return)
	authed.POST("/books/:id/purchase", c.Book.Purchase)

	// Ledger history
	authed.GET("/transactions", c.Txn.List)

	// Reviews
	authed.GET("/reviews", c.Review.List)
	authed.GET("/reviews/:id", c.Review.Get)
	authed.POST("/books/:id/reviews", c.Review.Create)
	authed.PUT("/reviews/:id", c.Review.Update)
	authed.DELETE("/reviews/:id", c.Review.Delete)
}
