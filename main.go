package main

import (
	"presenza.io/infrastructure"
	"presenza.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	infrastructure.StartServer()
}
