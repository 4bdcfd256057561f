package main

import "modkit/cmd"

func main() {
	cmd.Execute()
}
