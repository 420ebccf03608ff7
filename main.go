package main

import "github.com/axisbulk/axis/cmd"

func main() {
	cmd.Execute()
}
