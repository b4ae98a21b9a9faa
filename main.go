package main

import "github.com/roro-kube/app/cmd"

func main() {
	cmd.Execute()
}
