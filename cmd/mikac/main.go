package main

import (
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/satishbabariya/mika-go/cli/commands"
)

func main() {
	os.Exit(commands.Run(commands.NewBuildCommand(), os.Args[1:]))
}
