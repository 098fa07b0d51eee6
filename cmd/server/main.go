package main

import "github.com/ebuilder/internal/cli"

func main() {
	cli.Execute()
}
