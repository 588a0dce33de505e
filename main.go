package main

import (
	"github.com/novadesk/agency-management/cmd"
)

func main() {
	cmd.Execute()
}
