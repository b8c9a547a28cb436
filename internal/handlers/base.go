package handlers

import (
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

type pageParams struct {
	Page   int
	Limit  int
	Offset int
}

// paginate reads page/limit query parameters; limit is capped at 50.
func paginate(c *gin.Context) pageParams {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	limit := defaultPageSize
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return pageParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// pagedResponse shapes the standard list envelope.
func pagedResponse(items interface{}, total int64, p pageParams) gin.H {
	pages := int(math.Ceil(float64(total) / float64(p.Limit)))
	if pages == 0 {
		pages = 1
	}
	return gin.H{
		"items":       items,
		"total":       total,
		"pages":       pages,
		"currentPage": p.Page,
		"hasMore":     p.Page < pages,
	}
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// internalError logs the fault with context and hides it from the client.
func internalError(c *gin.Context, context string, err error) {
	log.Printf("%s: %v", context, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
