package main

import "github.com/ValentinKolb/dictd/cmd"

func main() {
	cmd.Execute()
}
