// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/hostfacts/hostfacts/cmd/hostfacts"

func main() {
	cmd.Execute()
}
