// Package models defines the durable entities of the tracker catalog and
// the domain errors shared by the store and the service layers.
package models

// Input length caps enforced at the tracker boundary. They mirror the
// column sizes of the relational schema.
const (
	MinUserNameLen = 5
	MaxUserNameLen = 25
	MinPasswordLen = 6
	MaxPasswordLen = 50
	MaxFileNameLen = 100
	MaxFileTypeLen = 25
	MaxFilePathLen = 300
	MaxQueryLen    = 100
	MaxPort        = 65535
)

// MaxFilesPerUser is the per-owner cap on registered files.
const MaxFilesPerUser = 10

// MaxFileID bounds the random file identifier draw: ids live in [0, MaxFileID).
const MaxFileID = 1_000_000

// AllModels returns every model for schema auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&SharedFile{},
	}
}
