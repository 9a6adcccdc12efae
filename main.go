package main

import "github.com/fakeyudi/labclock/cmd"

func main() {
	cmd.Execute()
}
