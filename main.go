package main

import "challenge-settlement-system/cmd/server"

func main() {
	server.Init()
	server.Run()
}
