package entity

import "errors"

// Sentinel errors returned by the repository layer. Handlers map these to
// HTTP statuses instead of inspecting driver-specific errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("duplicate record")
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Meta 包含分页元数据。
type Meta struct {
	Page     int64 `json:"page"`
	PageSize int64 `json:"page_size"`
	Total    int64 `json:"total"`
}

// BaseParams 包含通用的分页和排序参数。
type BaseParams struct {
	Page     int    `json:"page" form:"page" query:"page"`
	PageSize int    `json:"page_size" form:"page_size" query:"page_size"`
	OrderBy  string `json:"order_by" form:"order_by" query:"order_by"`
	Order    string `json:"order" form:"order" query:"order"`
}

// PageBounds limits the page size accepted by list queries.
type PageBounds struct {
	Min     int
	Default int
	Max     int
}

// DefaultPageBounds mirrors the configuration defaults.
func DefaultPageBounds() PageBounds {
	return PageBounds{Min: 1, Default: 10, Max: 100}
}

// Clamp normalises a requested page size into the configured range.
func (b PageBounds) Clamp(size int) int {
	bounds := b
	if bounds.Min <= 0 {
		bounds.Min = 1
	}
	if bounds.Max < bounds.Min {
		bounds.Max = bounds.Min
	}
	if bounds.Default < bounds.Min || bounds.Default > bounds.Max {
		bounds.Default = bounds.Min
	}
	if size <= 0 {
		return bounds.Default
	}
	if size < bounds.Min {
		return bounds.Min
	}
	if size > bounds.Max {
		return bounds.Max
	}
	return size
}
