package db

import (
	"strconv"

	"request-desk/internal/pkg/config"

	"github.com/shopspring/decimal"
)

// Dialect hides the SQL differences between the supported databases.
type Dialect struct {
	Name       string
	DriverName string
	goose      string
	lockClause string
	likeOp     string
	amountExpr string
	sumAmounts bool
}

var (
	Postgres = Dialect{
		Name:       config.DriverPostgres,
		DriverName: "pgx",
		goose:      "postgres",
		lockClause: " FOR UPDATE",
		likeOp:     "ILIKE",
		amountExpr: "amount",
		sumAmounts: true,
	}
	// amounts are stored as TEXT in SQLite to keep them exact
	SQLite = Dialect{
		Name:       config.DriverSQLite,
		DriverName: "sqlite",
		goose:      "sqlite3",
		lockClause: "",
		likeOp:     "LIKE",
		amountExpr: "CAST(amount AS REAL)",
	}
)

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d.Name == config.DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// LockClause is appended to a SELECT that must hold the row until commit.
func (d Dialect) LockClause() string { return d.lockClause }

// LikeOp matches case-insensitively. SQLite LIKE folds ASCII only.
func (d Dialect) LikeOp() string { return d.likeOp }

func (d Dialect) AmountExpr() string { return d.amountExpr }

// SumsAmounts reports whether SUM(amount) is exact. SQLite would sum TEXT amounts as floats.
func (d Dialect) SumsAmounts() bool { return d.sumAmounts }

// NoLimit is the LIMIT value meaning "all rows", needed when only OFFSET is set.
func (d Dialect) NoLimit() string {
	if d.Name == config.DriverPostgres {
		return "ALL"
	}
	return "-1"
}

// AmountArg binds a decimal so it compares against AmountExpr.
func (d Dialect) AmountArg(v decimal.Decimal) any {
	if d.sumAmounts {
		return v
	}
	return v.InexactFloat64()
}
