// Command pcbgen builds KiCad boards from board definition files.
package main

import "github.com/OpenTraceLab/pcbgen/cmd/pcbgen/cmd"

func main() {
	cmd.Execute()
}
