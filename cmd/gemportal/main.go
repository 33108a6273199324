// Command gemportal runs the gem portal API and its template tooling.
package main

import (
	"os"

	"gemportal/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
