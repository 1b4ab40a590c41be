package main

import (
	"os"

	"github.com/tg383520/geo-quiz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
