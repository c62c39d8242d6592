package main

import "github.com/markb/sareeone/cmd"

func main() {
	cmd.Execute()
}
