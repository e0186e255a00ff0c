package main

import "github.com/amasotti/cbplace/cmd"

func main() {
	cmd.Execute()
}
