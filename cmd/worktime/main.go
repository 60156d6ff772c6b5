package main

import "worktime/pkg/cli"

func main() {
	cli.Execute()
}
