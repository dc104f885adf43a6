package main

import "github.com/the-dev-tools/contextmap/internal/cli"

func main() {
	cli.Execute()
}
