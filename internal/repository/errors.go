// Package repository contains data access logic separated from HTTP handlers.
// Sentinel errors defined here allow higher layers to translate storage
// outcomes into HTTP responses without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrVenueNotFound is returned when a write references a venue id that does
// not exist. Handlers translate this into HTTP 400.
var ErrVenueNotFound = errors.New("venue not found")

// ErrWatermarkNotFound is returned when no sync has ever completed.
var ErrWatermarkNotFound = errors.New("no sync watermark")

// mysqlErrNoReferencedRow is raised when a foreign key target is missing.
const mysqlErrNoReferencedRow = 1452

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}
