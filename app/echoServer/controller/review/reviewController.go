package review

import (
	"log/slog"
	"net/http"
	"strconv"

	reviewsvc "bookhub/service/review"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reviewsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func email(c echo.Context) string {
	e, _ := c.Get("email").(string)
	return e
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch reviewsvc.Code(err) {
	case reviewsvc.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case reviewsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case reviewsvc.ErrReviewNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "review not found"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/books/:id/reviews
func (h *Controller) Create(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	rv, err := h.Svc.Create(c.Request().Context(), email(c), bookID, reviewsvc.Input{
		Rating:   req.Rating,
		Comments: req.Comments,
	})
	if err != nil {
		return h.fail(c, "review create", err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// GET /v1/reviews
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "review list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/reviews/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rv, err := h.Svc.Get(c.Request().Context(), email(c), id)
	if err != nil {
		return h.fail(c, "review get", err)
	}
	return c.JSON(http.StatusOK, rv)
}

// PUT /v1/reviews/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	rv, err := h.Svc.Update(c.Request().Context(), email(c), id, reviewsvc.Input{
		Rating:   req.Rating,
		Comments: req.Comments,
	})
	if err != nil {
		return h.fail(c, "review update", err)
	}
	return c.JSON(http.StatusOK, rv)
}

// DELETE /v1/reviews/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), email(c), id); err != nil {
		return h.fail(c, "review delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
