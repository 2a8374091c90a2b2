package orders

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) GetByID(ctx context.Context, id string) (Order, error) {
	id = strings.ToLower(strings.TrimSpace(id))

	var o Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

type ListByCompanyParams struct {
	CompanyID string
	Role      string // "buyer" | "seller" | "" (her ikisi)
	Status    string // optional filter
	Page      int
	PageSize  int
}

type ListByCompanyResult struct {
	Items []Order
	Total int64
}

func (r *Repo) ListByCompany(ctx context.Context, in ListByCompanyParams) (ListByCompanyResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	q := r.db.WithContext(ctx).Model(&Order{})
	switch in.Role {
	case "buyer":
		q = q.Where("buyer_company_id = ?", in.CompanyID)
	case "seller":
		q = q.Where("seller_company_id = ?", in.CompanyID)
	default:
		q = q.Where("buyer_company_id = ? OR seller_company_id = ?", in.CompanyID, in.CompanyID)
	}
	if s := strings.TrimSpace(in.Status); s != "" {
		q = q.Where("status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListByCompanyResult{}, err
	}

	var items []Order
	if err := q.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return ListByCompanyResult{}, err
	}

	return ListByCompanyResult{Items: items, Total: total}, nil
}
