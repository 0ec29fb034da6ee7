package main

import "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/cli"

func main() {
	cli.Execute()
}
