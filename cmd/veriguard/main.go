package main

import "github.com/veriguard/veriguard/internal/cli"

func main() {
	cli.Execute()
}
