package main

import "github.com/notargets/adbinterp/cmd"

func main() {
	cmd.Execute()
}
