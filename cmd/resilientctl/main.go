package main

import "github.com/vietddude/resilient/internal/cli"

func main() {
	cli.Execute()
}
