package main

import (
	"os"

	"github.com/confstore/confstore/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
