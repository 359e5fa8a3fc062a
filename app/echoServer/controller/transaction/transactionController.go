package transaction

import (
	"log/slog"
	"net/http"

	ledgersvc "bookhub/service/ledger"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc *ledgersvc.Recorder
	Log *slog.Logger
}

// GET /v1/transactions
// @Summary  List the caller's ledger entries
// @Tags     transactions
// @Produce  json
// @Success  200  {array}  model.Transaction
// @Router   /v1/transactions [get]
func (h *Controller) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.History(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("transaction list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
