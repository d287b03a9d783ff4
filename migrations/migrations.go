package migrations

import (
	"embed"
	"io/fs"
)

//go:embed schema/app/*.sql
var schemaFS embed.FS

// Schema returns the embedded schema filesystem rooted at schema/.
// Every statement is idempotent so the schema can be applied on each start.
func Schema() fs.FS {
	fs, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		panic(err) // should never happen since we control the embed path
	}
	return fs
}
