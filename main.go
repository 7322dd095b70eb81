package main

import "github.com/optipuls/optipuls/cmd"

func main() {
	cmd.Execute()
}
