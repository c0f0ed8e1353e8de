// Command termsync manages a small content platform whose post types can be
// mirrored into taxonomies, and serves it over HTTP.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "termsync:", err)
		os.Exit(exitCode(err))
	}
}
