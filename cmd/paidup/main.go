// Command line entry point for the PaidUp debt-recovery engine.
package main

import "github.com/paidup/paidup/internal/interfaces/cli"

func main() {
	cli.Execute()
}
