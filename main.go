package main

import "github.com/nblair2/dnp3snoop/cmd"

func main() {
	cmd.Execute()
}
