//go:build !cgo
// +build !cgo

package archive

import (
	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"
