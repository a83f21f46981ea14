package main

import "github.com/clubsmell/fragdash/cmd"

func main() {
	cmd.Execute()
}
