package main

import (
	"fmt"
	"os"

	"github.com/itchan-dev/agenda/backend/internal/admin"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := admin.NewRootCmd(admin.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
