package migrate

import "embed"

// Embedded carries the SQL migrations compiled into the binary.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// EmbeddedDir is the directory name inside Embedded.
const EmbeddedDir = "migrations"
