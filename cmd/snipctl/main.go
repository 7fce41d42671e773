package main

import "github.com/snipbox/snipbox/cmd/snipctl/cmd"

func main() {
	cmd.Execute()
}
