package main

import "github.com/dbsmedya/mongolens/cmd/mongolens/cmd"

func main() {
	cmd.Execute()
}
