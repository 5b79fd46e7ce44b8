package main

import (
	"os"

	"github.com/satishbabariya/mika-go/cli/commands"
)

func main() {
	os.Exit(commands.Run(commands.NewTranslateCommand(), os.Args[1:]))
}
