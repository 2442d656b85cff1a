package repository

import (
	"go.mongodb.org/mongo-driver/mongo"

	"taskmanager-api/internal/common"
)

// translateError maps a driver error onto the taxonomy. Duplicate keys become
// UniqueViolation with uniqueMsg; everything else, including timeouts and
// cancelled contexts, is StoreUnavailable.
func translateError(err error, uniqueMsg string) error {
	if err == nil {
		return nil
	}
	if uniqueMsg != "" && mongo.IsDuplicateKeyError(err) {
		return common.UniqueViolation(uniqueMsg)
	}
	return common.StoreUnavailable(err)
}
