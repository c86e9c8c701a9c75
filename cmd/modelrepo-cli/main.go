package main

import "modelrepo/cmd/modelrepo-cli/cmd"

func main() {
	cmd.Execute()
}
