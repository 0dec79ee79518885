package main

import "github.com/theirongolddev/flowtrack/cmd"

func main() {
	cmd.Execute()
}
