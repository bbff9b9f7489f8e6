package main

import "github.com/cppla/blogly/cmd"

func main() {
	cmd.Execute()
}
