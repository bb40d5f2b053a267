package main

import "github.com/Tiliavir/portfolio-api/cmd"

func main() {
	cmd.Execute()
}
