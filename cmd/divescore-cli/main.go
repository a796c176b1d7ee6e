package main

import (
	"context"

	"divescore-backend/cmd/divescore-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
