package main

import (
	"github.com/shardrun/shardrun/srcs/go/cmd/shardctl/cli"
)

func main() {
	cli.Execute()
}
