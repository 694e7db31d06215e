// gomon is an interactive terminal process monitor.
package main

import (
	"os"

	"github.com/w31r4/gomon/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
