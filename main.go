package main

import "github.com/theirongolddev/foogie/cmd"

func main() {
	cmd.Execute()
}
