package main

import "github.com/mvp-joe/rbx-ripper/internal/cli"

func main() {
	cli.Execute()
}
