package main

import "github.com/hairoku/hairoku/cmd/hairoku-server/cmd"

func main() {
	cmd.Execute()
}
