// Package static embeds the files served under /static/.
//
// The client build writes client.wasm.gz and wasm_exec.js into assets/.
package static

import (
	"embed"
	"io/fs"
)

//go:embed assets
var assets embed.FS

var FS = mustSub(assets, "assets")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
