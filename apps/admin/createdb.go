package main

import "github.com/trezcool/mahudhurio/storage/database"

var createDBFunc = database.CreateIfNotExist // mockable

func (cli *commandLine) createDB() error {
	return createDBFunc(cli.conf)
}
