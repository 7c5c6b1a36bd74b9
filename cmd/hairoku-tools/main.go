package main

import "github.com/hairoku/hairoku/cmd/hairoku-tools/cmd"

func main() {
	cmd.Execute()
}
