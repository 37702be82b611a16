package main

import (
	"os"

	"github.com/priku/tilitin/internal/commands"
	_ "github.com/priku/tilitin/internal/store/mysql"
	_ "github.com/priku/tilitin/internal/store/postgres"
	_ "github.com/priku/tilitin/internal/store/sqlite"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
