package main

import (
	"github.com/matjam/shmpaper/internal/cli"
)

func main() {
	cli.Execute()
}
