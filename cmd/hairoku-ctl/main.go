package main

import "github.com/hairoku/hairoku/cmd/hairoku-ctl/cmd"

func main() {
	cmd.Execute()
}
