package main

import "github.com/cppla/forumapp/commands"

func main() {
	commands.Execute()
}
