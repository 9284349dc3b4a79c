package main

import "github.com/MeKo-Tech/seglabel/cmd/seglabel/cmd"

func main() {
	cmd.Execute()
}
