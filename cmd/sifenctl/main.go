package main

import "github.com/jhoicas/sifen-api/internal/interfaces/cli"

func main() {
	cli.Execute()
}
