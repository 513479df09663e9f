package main

import "github.com/Togather-Foundation/eventreg/cmd/server/cmd"

func main() {
	cmd.Execute()
}
