package main

import "github.com/tonimelisma/box-client/cmd"

func main() {
	cmd.Execute()
}
