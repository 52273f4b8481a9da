package db

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// Fold is the SQL function that lowercases text for case-insensitive
// matching. SQLite's LOWER only folds ASCII, so on SQLite it is a Go
// function; on Postgres it is created by the schema and wraps lower.
const Fold = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(Fold, 1, foldValue)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument %T", Fold, v)
	}
}
