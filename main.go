package main

import "github.com/fakeyudi/stride/cmd"

func main() {
	cmd.Execute()
}
