package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/http/validation"
	"pazarnet.com/app/internal/modules/shipments"
	"pazarnet.com/app/internal/shared/apperr"
)

type ShipmentHandler struct {
	Svc      *shipments.Service
	Tracking *shipments.TrackingService
	Repo     *shipments.Repo
}

func NewShipmentHandler(svc *shipments.Service, tracking *shipments.TrackingService, repo *shipments.Repo) *ShipmentHandler {
	return &ShipmentHandler{Svc: svc, Tracking: tracking, Repo: repo}
}

type initiateShipmentRequest struct {
	CarrierCode string `json:"carrierCode" binding:"required"`
	Items       []struct {
		ProductID string `json:"productId" binding:"required"`
		Qty       int    `json:"qty"`
	} `json:"items"`
}

// POST /api/orders/:id/shipments
func (h *ShipmentHandler) Initiate(c *gin.Context) {
	var req initiateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Geçersiz istek.", validation.FromBindError(err, &req)))
		return
	}

	items := make([]shipments.ShipmentItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, shipments.ShipmentItem{ProductID: it.ProductID, Qty: it.Qty})
	}

	shp, err := h.Svc.InitiateShipment(c.Request.Context(), shipments.InitiateShipmentInput{
		OrderID:         c.Param("id"),
		SellerCompanyID: middleware.GetCompanyID(c),
		CarrierCode:     req.CarrierCode,
		Items:           items,
	})
	if err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}

	c.JSON(http.StatusCreated, shipmentJSON(shp))
}

// GET /api/orders/:id/shipments
func (h *ShipmentHandler) ListByOrder(c *gin.Context) {
	list, err := h.Repo.ListByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, shp := range list {
		out = append(out, shipmentJSON(shp))
	}
	c.JSON(http.StatusOK, gin.H{"shipments": out})
}

// POST /api/shipments/:id/transit
func (h *ShipmentHandler) MarkInTransit(c *gin.Context) {
	if err := h.Tracking.MarkInTransit(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/shipments/:id/delivered
func (h *ShipmentHandler) MarkDelivered(c *gin.Context) {
	if err := h.Tracking.MarkDelivered(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func shipmentJSON(shp shipments.Shipment) gin.H {
	return gin.H{
		"id":             shp.ID,
		"orderId":        shp.OrderID,
		"carrierCode":    shp.CarrierCode,
		"mode":           shp.Mode,
		"status":         shp.Status,
		"trackingNumber": shp.TrackingNumber,
		"labelUrl":       shp.LabelURL,
		"sequence":       shp.Sequence,
		"items":          shp.Items(),
	}
}
