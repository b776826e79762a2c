// Command luatypes is the CLI driver for the gradual type checker:
// `luatypes check <files...>` and `luatypes test <dir>`. A thin main()
// recovers panics into a user-facing "this is a bug" message and
// delegates everything else to internal/cli.
package main

import (
	"fmt"
	"os"

	"github.com/funvibe/luatypes/internal/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "this is a bug in luatypes, please report it")
			os.Exit(1)
		}
	}()

	os.Exit(cli.Run(os.Args[1:]))
}
