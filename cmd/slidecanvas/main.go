package main

import "slidecanvas/interfaces/cli"

func main() {
	cli.Execute()
}
