// spritetint - sprite palette analysis for the character asset pipeline.
//
// spritetint reports the dominant colours of sprite images and inspects
// GIF and glTF animation assets.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/spritetint/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
