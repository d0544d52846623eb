package main

import "github.com/OpenTraceLab/bom2md/cmd/bom2md/cmd"

func main() {
	cmd.Execute()
}
