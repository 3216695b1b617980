package main

import "github.com/nutriflow/backend/cmd/mealplan/cmd"

func main() {
	cmd.Execute()
}
