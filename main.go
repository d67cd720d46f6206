package main

import "github.com/ValentinKolb/fetchd/cmd"

func main() {
	cmd.Execute()
}
