package main

import "github.com/adiwardana/expense-approval/cmd"

func main() {
	cmd.Execute()
}
