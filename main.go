package main

import "github.com/chrisdamba/fleetops/cmd"

func main() {
	cmd.Execute()
}
