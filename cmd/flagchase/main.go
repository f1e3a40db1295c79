package main

import (
	"github.com/aweston/flagchase/internal/cli"
)

func main() {
	cli.Execute()
}
