package main

import (
	"github.com/openpeerlabs/escrow-backend/internal/server"
)

func main() {
	server.Init()
}
