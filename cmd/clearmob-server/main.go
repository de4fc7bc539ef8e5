package main

import "github.com/oshokin/clearmob/cmd/clearmob-server/cmd"

func main() {
	cmd.Execute()
}
