package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	defaultLimit = 20
	maxLimit     = 100
)

// Configure 设置全局默认页大小与上限，启动时调用一次
func Configure(def, max int) {
	if def > 0 {
		defaultLimit = def
	}
	if max >= defaultLimit {
		maxLimit = max
	}
}

// Params 1-based 分页参数
type Params struct {
	Page  int
	Limit int
}

// New 归一化分页参数：page<1 取 1，limit<1 取默认值，超过上限截断
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// FromQuery 读取 ?page=&limit=，非法值按缺省处理
func FromQuery(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return New(page, limit)
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Meta 分页元信息
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Page 列表响应 { data, meta }
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// NewPage 计算总页数（向上取整）
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Page[T]{
		Data: items,
		Meta: Meta{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages},
	}
}
