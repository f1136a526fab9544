package main

import (
	"os"

	"github.com/powervate/admin-api/cmd/api/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
