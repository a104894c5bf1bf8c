// Package appfs embeds the app's non-Go assets: SQL migrations, email
// templates and the common-passwords list.
package appfs

import "embed"

//go:embed migrations templates assets
var FS embed.FS
