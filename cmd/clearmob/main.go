package main

import "github.com/oshokin/clearmob/cmd/clearmob/cmd"

func main() {
	cmd.Execute()
}
