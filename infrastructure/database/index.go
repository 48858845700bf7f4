package database

import (
	"presenza.io/infrastructure/database/connection"
	"presenza.io/infrastructure/database/connection/datastore"
)

func SetUpDatabase() {
	connection.ConnectToDatabase()
}

func CleanUp() {
	datastore.CleanUp()
}

type BaseModel interface {
	ParseModel() any
}
