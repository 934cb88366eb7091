package main

import "github.com/frahmantamala/property-management/cmd"

func main() {
	cmd.Execute()
}
