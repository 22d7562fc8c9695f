package repository

import (
	"strings"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra/db"
	"request-desk/internal/usecase/shared"
)

// queryBuilder collects bind arguments and renders dialect placeholders.
type queryBuilder struct {
	dialect db.Dialect
	conds   []string
	args    []any
}

func newQueryBuilder(d db.Dialect) *queryBuilder {
	return &queryBuilder{dialect: d}
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *queryBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func (b *queryBuilder) applyFilter(f shared.RequestFilter) {
	if len(f.Kinds) > 0 {
		ph := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			ph[i] = b.arg(string(k))
		}
		b.where("kind IN (" + strings.Join(ph, ", ") + ")")
	}
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			ph[i] = b.arg(string(s))
		}
		b.where("status IN (" + strings.Join(ph, ", ") + ")")
	}
	if from := f.CreatedAfter(); from != nil {
		b.where("created_at >= " + b.arg(*from))
	}
	if before := f.CreatedBefore(); before != nil {
		b.where("created_at < " + b.arg(*before))
	}
	if f.StartFrom != nil {
		b.where("start_date >= " + b.arg(request.Day(*f.StartFrom)))
	}
	if f.StartTo != nil {
		b.where("start_date <= " + b.arg(request.Day(*f.StartTo)))
	}
	if f.AmountMin != nil {
		b.where(b.dialect.AmountExpr() + " >= " + b.arg(b.dialect.AmountArg(*f.AmountMin)))
	}
	if f.AmountMax != nil {
		b.where(b.dialect.AmountExpr() + " <= " + b.arg(b.dialect.AmountArg(*f.AmountMax)))
	}
	if f.Requester != "" {
		b.where(b.contains("requester", f.Requester))
	}
	if f.Search != "" {
		b.where("(" + b.contains("title", f.Search) +
			" OR " + b.contains("description", f.Search) +
			" OR " + b.contains("requester", f.Search) + ")")
	}
}

func (b *queryBuilder) contains(column, term string) string {
	return column + " " + b.dialect.LikeOp() + " " + b.arg("%"+escapeLike(term)+"%") + ` ESCAPE '\'`
}

// orderBy mirrors shared.SortRequests: missing values compare greater, ties follow id.
func (b *queryBuilder) orderBy(o shared.Ordering) string {
	col := "created_at"
	switch o.Field {
	case shared.OrderByUpdatedAt:
		col = "updated_at"
	case shared.OrderByStartDate:
		col = "start_date"
	case shared.OrderByAmount:
		col = b.dialect.AmountExpr()
	}
	dir, nulls := "ASC", "NULLS LAST"
	if o.Desc {
		dir, nulls = "DESC", "NULLS FIRST"
	}
	return " ORDER BY " + col + " " + dir + " " + nulls + ", id " + dir
}

func (b *queryBuilder) page(p shared.Page) string {
	switch {
	case p.Limit > 0 && p.Offset > 0:
		return " LIMIT " + b.arg(p.Limit) + " OFFSET " + b.arg(p.Offset)
	case p.Limit > 0:
		return " LIMIT " + b.arg(p.Limit)
	case p.Offset > 0:
		return " LIMIT " + b.dialect.NoLimit() + " OFFSET " + b.arg(p.Offset)
	default:
		return ""
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
