package main

import "github.com/agentic-research/nextanim/cmd"

func main() {
	cmd.Execute()
}
