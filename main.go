package main

import "github.com/moyu-x/sort-folder/cmd"

func main() {
	cmd.Execute()
}
