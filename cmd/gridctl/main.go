package main

import "github.com/mcoot/hiddengrid/internal/cli"

func main() {
	cli.Execute()
}
