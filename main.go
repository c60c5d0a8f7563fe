package main

import "github.com/frahmantamala/staff-registry/cmd"

func main() {
	cmd.Execute()
}
