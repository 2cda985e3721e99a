package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
)

// ChildParam lets a parent narrow a list to one linked student.
const ChildParam = "studentId"

// itemsPerPageParam is accepted as a synonym of limit.
const itemsPerPageParam = "itemsPerPage"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// listRequest collects the recognised filter keys plus paging from the query
// string. Repeated keys use their first value.
func listRequest(c *gin.Context, keys []string) service.ListRequest {
	filters := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := c.GetQuery(key); ok {
			filters[key] = value
		}
	}
	limit := c.Query("limit")
	if limit == "" {
		limit = c.Query(itemsPerPageParam)
	}
	return service.ListRequest{
		Filters: filters,
		Page:    c.Query("page"),
		Limit:   limit,
		ChildID: c.Query(ChildParam),
	}
}
