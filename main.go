package main

import "github.com/commercemobile/storefront-admin/cmd"

func main() {
	cmd.Execute()
}
