package middleware

import (
	"github.com/gin-gonic/gin"

	"pazarnet.com/app/internal/shared/apperr"
)

const (
	// HeaderCompanyID is set by the upstream gateway after tenant/session
	// resolution; this service trusts it.
	HeaderCompanyID = "X-Company-ID"
	CtxKeyCompanyID = "company_id"
)

// RequireCompany guards the network API routes: no resolved company, no call.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(HeaderCompanyID)
		if cid == "" {
			Fail(c, apperr.UnauthorizedErr("Şirket kimliği bulunamadı."))
			return
		}
		c.Set(CtxKeyCompanyID, cid)
		c.Next()
	}
}

func GetCompanyID(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyCompanyID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
