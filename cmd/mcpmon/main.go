package main

import (
	"os"

	"github.com/mcpmon/mcpmon/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
