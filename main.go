package main

import "Wordrush/cmd"

func main() {
	cmd.Execute()
}
