package main

import "github.com/rosettacloud/shellchat/cmd/shellchat/cmds"

func main() {
	cmds.Execute()
}
