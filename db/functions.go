// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// CaseFold is the SQL function both dialects provide for case-insensitive
// matching. SQLite's built-in LOWER only folds ASCII.
const CaseFold = "casefold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(CaseFold, 1, casefold); err != nil {
		panic(fmt.Sprintf("register %s: %v", CaseFold, err))
	}
}

func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
