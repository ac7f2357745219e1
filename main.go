package main

import "github.com/jsphweid/utsu/cmd"

func main() {
	cmd.Execute()
}
