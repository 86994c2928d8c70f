package main

import "avicbot/cmd"

func main() {
	cmd.Execute()
}
