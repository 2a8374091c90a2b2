package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/http/middleware"
	"pazarnet.com/app/internal/modules/orders"
	"pazarnet.com/app/internal/shared/apperr"
)

type OrderHandler struct {
	Repo *orders.Repo
}

func NewOrderHandler(repo *orders.Repo) *OrderHandler {
	return &OrderHandler{Repo: repo}
}

// GET /api/orders?role=buyer|seller&status=&page=&pageSize=
func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	res, err := h.Repo.ListByCompany(c.Request.Context(), orders.ListByCompanyParams{
		CompanyID: middleware.GetCompanyID(c),
		Role:      c.Query("role"),
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, orderJSON(&res.Items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": res.Total})
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, toAppErr(err))
		return
	}

	companyID := middleware.GetCompanyID(c)
	if o.BuyerCompanyID != companyID && o.SellerCompanyID != companyID {
		middleware.Fail(c, toAppErr(orders.ErrForbidden))
		return
	}

	c.JSON(http.StatusOK, orderJSON(&o))
}

func orderJSON(o *orders.Order) gin.H {
	return gin.H{
		"id":              o.ID,
		"buyerCompanyId":  o.BuyerCompanyID,
		"sellerCompanyId": o.SellerCompanyID,
		"subtotalCents":   o.SubtotalCents,
		"shippingCents":   o.ShippingCents,
		"commissionCents": o.CommissionCents,
		"totalCents":      o.TotalCents,
		"currency":        o.Currency,
		"status":          o.Status,
		"items":           o.Items(),
		"paidAt":          o.PaidAt,
		"confirmedAt":     o.ConfirmedAt,
		"completedAt":     o.CompletedAt,
		"createdAt":       o.CreatedAt,
	}
}
