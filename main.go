package main

import "github.com/kozaktomas/face-sentry/cmd"

func main() {
	cmd.Execute()
}
