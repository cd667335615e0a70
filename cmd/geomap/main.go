package main

import "geomap/cmd/geomap/cmd"

func main() {
	cmd.Execute()
}
