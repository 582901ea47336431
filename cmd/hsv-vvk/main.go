package main

import "github.com/pfrederiksen/hsv-vvk/internal/cli"

func main() {
	cli.Execute()
}
