package main

import (
	"os"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/console"
)

func main() {
	if err := console.Execute(); err != nil {
		os.Exit(1)
	}
}
