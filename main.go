package main

import "github.com/rmugicag/pyquet/cmd"

func main() {
	cmd.Execute()
}
