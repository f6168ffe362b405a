package main

import "github.com/chrisdamba/menuboard/cmd"

func main() {
	cmd.Execute()
}
