// Command armeria-docs serves the demo services together with their
// specification document.
package main

import (
	"fmt"
	"os"

	"github.com/sangyongchoi/armeria/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
