package shipments

import "errors"

var (
	ErrUnknownCarrier = errors.New("unknown carrier code")
	ErrForbidden      = errors.New("only the seller of record can ship")
	ErrNotShippable   = errors.New("order must be PAID to ship")
	ErrNotFound       = errors.New("shipment not found")
)
