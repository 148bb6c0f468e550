package main

import "picpurge/internal/cli"

func main() {
	cli.Execute()
}
