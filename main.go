package main

import (
	"github.com/mj1618/window-tiler/cmd"

	// Window backends register themselves with the platform package.
	_ "github.com/mj1618/window-tiler/internal/platform/win32"
	_ "github.com/mj1618/window-tiler/internal/platform/x11"
)

func main() {
	cmd.Execute()
}
