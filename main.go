package main

import (
	_ "github.com/anoixa/shelf-scanner/docs"

	"github.com/anoixa/shelf-scanner/cmd"
)

// @title        Shelf Scanner API
// @version      1.0
// @description  Receives bookshelf photos from devices, stores them in an object store and records scans.
// @license.name MIT
// @BasePath     /
func main() {
	cmd.Execute()
}
