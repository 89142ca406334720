// Package migrations embeds the schema migrations for every supported dialect
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

// FS holds one directory per dialect: sqlite, postgres, mysql
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS

// Source returns the embedded migrations, or the directory at path when one is given
func Source(path string) fs.FS {
	if path == "" {
		return FS
	}
	return os.DirFS(path)
}
