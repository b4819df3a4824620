package main

import "stepsync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
