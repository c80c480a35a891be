package main

import "github.com/macflow/macflow/cmd"

func main() {
	cmd.Execute()
}
