package main

import (
	"context"
	"os"

	"filling_line/internal/cli"
)

// @title        Filling Line API
// @version      1.0
// @description  Tag address space and method calls of a simulated beverage filling machine.
// @host         localhost:8080
// @BasePath     /
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
