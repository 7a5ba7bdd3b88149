package main

import "github.com/ethinscribe/inscriber/cmd/inscriber/cmd"

func main() {
	cmd.Execute()
}
