package main

import "github.com/olivoil/nymview/internal/cli"

func main() {
	cli.Execute()
}
