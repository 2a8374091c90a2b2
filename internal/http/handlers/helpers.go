package handlers

import (
	"errors"

	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/modules/payments"
	"pazarnet.com/app/internal/modules/settlement"
	"pazarnet.com/app/internal/modules/shipments"
	"pazarnet.com/app/internal/shared/apperr"
)

// toAppErr maps module sentinel errors onto the HTTP error taxonomy. Unknown
// errors wrap as internal.
func toAppErr(err error) *apperr.AppError {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return apperr.NotFoundErr("Sipariş bulunamadı.")
	case errors.Is(err, shipments.ErrNotFound):
		return apperr.NotFoundErr("Gönderi bulunamadı.")
	case errors.Is(err, orders.ErrForbidden),
		errors.Is(err, payments.ErrForbidden),
		errors.Is(err, shipments.ErrForbidden):
		return apperr.ForbiddenErr("Bu işlem için yetkiniz yok.")
	case errors.Is(err, orders.ErrInvalidState):
		return apperr.InvalidErr("Sipariş bu işleme uygun durumda değil.", nil)
	case errors.Is(err, payments.ErrOrderNotPayable):
		return apperr.InvalidErr("Sipariş ödemeye uygun durumda değil.", nil)
	case errors.Is(err, shipments.ErrNotShippable):
		return apperr.InvalidErr("Sipariş kargoya uygun durumda değil.", nil)
	case errors.Is(err, shipments.ErrUnknownCarrier):
		return apperr.InvalidErr("Bilinmeyen kargo firması.", nil)
	case errors.Is(err, settlement.ErrNoReleasablePayout):
		return apperr.InvalidErr("Bu sipariş için tekrar denenecek payout yok.", nil)
	default:
		return apperr.Wrap(err)
	}
}
