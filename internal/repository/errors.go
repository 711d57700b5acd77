// Package repository contains data access logic separated from HTTP handlers.
// Every todo query is scoped by owner id; users are looked up by id or email.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when an insert violates a uniqueness constraint,
// e.g. registering a username or email that is already taken.  Handlers
// translate it into HTTP 400 "User already exists".
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
