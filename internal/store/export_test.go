package store

import "gorm.io/gorm"

// SharedTestDB returns the database set up by TestMain for tests in the store_test package
func SharedTestDB() *gorm.DB {
	return testDB
}
