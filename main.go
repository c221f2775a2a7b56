package main

import "github.com/tensorfem/FEKernel/cmd"

func main() {
	cmd.Execute()
}
