package main

import "github.com/hairoku/hairoku/cmd/hairoku-record/cmd"

func main() {
	cmd.Execute()
}
