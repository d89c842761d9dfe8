package main

import "github.com/markdavies/harvest-toggl-sync/cmd"

func main() {
	cmd.Execute()
}
