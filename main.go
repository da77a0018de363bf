package main

import "twin-sync/cmd"

func main() {
	cmd.Execute()
}
