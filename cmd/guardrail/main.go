package main

//go:generate swag init -g cmd/guardrail/main.go -o docs

// @title           Guardrail API
// @version         0.1.0
// @description     Trade plan guardrails and the global trading pause governor.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey ApiToken
// @in header
// @name X-API-Token

import (
	"os"

	"guardrail/cmd/guardrail/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
