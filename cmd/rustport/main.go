package main

import "github.com/mvp-joe/rustport/internal/cli"

func main() {
	cli.Execute()
}
