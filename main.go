/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/moling/userservice/cmd"

func main() {
	cmd.Execute()
}
