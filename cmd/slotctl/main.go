package main

import "slotbook/internal/cli"

func main() {
	cli.Execute()
}
