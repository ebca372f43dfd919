package main

import (
	"github.com/NVIDIA/hwmatch/pkg/cli"
)

func main() {
	cli.Execute()
}
