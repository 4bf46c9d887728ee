package main

import (
	"os"

	"github.com/mattn/html2md/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
