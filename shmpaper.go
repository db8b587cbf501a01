package shmpaper

import (
	_ "embed"
)

//go:embed VERSION
var Version string

//go:embed shmpaper.toml
var DefaultConfig string
