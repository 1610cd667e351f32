// cmd/gobi/main.go
//
// Entry point for the gobi task runner.
//
// Flow:
// 1. Resolve settings and open the log file
// 2. Register the project recipe, the recipe module and scripted plugins
// 3. Hand the arguments to the root project action in run or completion mode

package main

import (
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
