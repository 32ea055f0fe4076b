package sql

import (
	"fmt"
	"strings"

	"studenthub/internal/entity"

	"gorm.io/gorm"
)

// listSpec declares, per entity kind, which columns a listing may touch.
// Sort and search fields are enumerated here once instead of being rebuilt
// ad hoc per endpoint, so request parameters can never reach an arbitrary
// column.
type listSpec struct {
	// defaultSort is used when order_by is absent or not in sortable.
	defaultSort string
	// sortable maps accepted order_by values to their columns.
	sortable map[string]string
	// search lists the columns matched case-insensitively against a keyword.
	search []string
	// tieBreak keeps ordering deterministic when sort values collide.
	tieBreak string
}

func (s listSpec) orderClause(params entity.BaseParams) string {
	column := s.sortable[strings.TrimSpace(params.OrderBy)]
	if column == "" {
		column = s.defaultSort
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(params.Order), entity.SortAsc) {
		direction = "ASC"
	}
	tie := s.tieBreak
	if tie == "" {
		tie = "id"
	}
	if column == tie {
		return fmt.Sprintf("%s %s", column, direction)
	}
	return fmt.Sprintf("%s %s, %s ASC", column, direction, tie)
}

// runList executes a filtered listing: keyword predicate, total count over
// the filtered set, then the ordered page. The total is computed before
// limit/offset so it never depends on the requested page.
func (r *GormRepository) runList(query *gorm.DB, spec listSpec, params entity.BaseParams, keyword string, dest interface{}) (*entity.Meta, error) {
	if kw := strings.TrimSpace(keyword); kw != "" && len(spec.search) > 0 {
		like := "%" + strings.ToLower(kw) + "%"
		clauses := make([]string, 0, len(spec.search))
		args := make([]interface{}, 0, len(spec.search))
		for _, column := range spec.search {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, like)
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := r.pages.Clamp(params.PageSize)

	err := query.
		Order(spec.orderClause(params)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(dest).Error
	if err != nil {
		return nil, err
	}

	return &entity.Meta{
		Page:     int64(page),
		PageSize: int64(pageSize),
		Total:    total,
	}, nil
}
