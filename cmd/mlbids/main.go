package main

import (
	"mlbids/cmd/mlbids/cmd"
)

func main() {
	cmd.Execute()
}
