package main

import (
	"os"

	"github.com/malbeclabs/crowdfunding/client/crowdfunding/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
