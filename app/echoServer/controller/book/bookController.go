package book

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"bookhub/model"
	booksvc "bookhub/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

func email(c echo.Context) string {
	e, _ := c.Get("email").(string)
	return e
}

// httpStatus maps a service error code to a stable outward status so callers
// can branch on failure category without string matching.
func httpStatus(code booksvc.ErrCode) int {
	switch code {
	case booksvc.ErrInvalidArgument:
		return http.StatusBadRequest
	case booksvc.ErrUserNotFound, booksvc.ErrBookNotFound:
		return http.StatusNotFound
	case booksvc.ErrOutOfStock, booksvc.ErrDuplicateBook, booksvc.ErrDuplicateRequest:
		return http.StatusConflict
	case booksvc.ErrNotAllowed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := httpStatus(booksvc.Code(err))
	if code == http.StatusInternalServerError {
		h.Log.Error(op, "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(code, echo.Map{"message": "internal error"})
	}
	return c.JSON(code, echo.Map{"message": err.Error()})
}

func toInput(req BookReq) booksvc.BookInput {
	return booksvc.BookInput{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Edition:         req.Edition,
		Description:     req.Description,
		Genre:           req.Genre,
		AuthorName:      req.AuthorName,
		PublisherName:   req.PublisherName,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		UnitPrice:       req.UnitPrice,
	}
}

// POST /v1/books  (admin)
// @Summary  Create book
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    payload  body  BookReq  true  "Book payload"
// @Success  201  {object}  model.Book
// @Router   /v1/books [post]
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b, err := h.Svc.Create(c.Request().Context(), email(c), toInput(req))
	if err != nil {
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id  (admin)
func (h *Controller) Edit(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b, err := h.Svc.Edit(c.Request().Context(), email(c), id, toInput(req))
	if err != nil {
		return h.fail(c, "book edit", err)
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	q := booksvc.ListQuery{
		Page:      page,
		Size:      size,
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Search:    c.QueryParam("search"),
	}
	out, err := h.Svc.List(c.Request().Context(), email(c), q)
	if err != nil {
		return h.fail(c, "book list", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/books/search
func (h *Controller) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	out, err := h.Svc.Search(c.Request().Context(), email(c), c.QueryParam("term"), page, size)
	if err != nil {
		return h.fail(c, "book search", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), email(c), id)
	if err != nil {
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), email(c), id); err != nil {
		return h.fail(c, "book delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/books/:id/borrow
// @Summary  Borrow copies of a book
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    id       path  int       true  "Book id"
// @Param    payload  body  CountReq  true  "Borrow count"
// @Success  200  {object}  model.Book
// @Router   /v1/books/{id}/borrow [post]
func (h *Controller) Borrow(c echo.Context) error {
	return h.inventoryOp(c, "borrow", h.Svc.Borrow)
}

// POST /v1/books/:id/return
func (h *Controller) Return(c echo.Context) error {
	return h.inventoryOp(c, "return", h.Svc.Return)
}

// POST /v1/books/:id/purchase
func (h *Controller) Purchase(c echo.Context) error {
	return h.inventoryOp(c, "purchase", h.Svc.Purchase)
}

func (h *Controller) inventoryOp(c echo.Context, name string,
	op func(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	idemKey := c.Request().Header.Get("Idempotency-Key")

	b, err := op(c.Request().Context(), email(c), id, req.Count, idemKey)
	if err != nil {
		return h.fail(c, "book "+name, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "successfully completed " + name,
		"book":    b,
	})
}
