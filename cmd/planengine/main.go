package main

import "github.com/riceops/production-planning/internal/adapters/cli"

func main() {
	cli.Execute()
}
