package main

import (
	"os"

	"github.com/shardrun/shardrun/srcs/go/cmd/shardrun/app"
)

func main() {
	app.Main(os.Args)
}
