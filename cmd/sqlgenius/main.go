package main

import "github.com/koustreak/sqlgenius/internal/cli"

func main() {
	cli.Execute()
}
