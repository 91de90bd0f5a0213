package database

import (
	"encoding/json"

	"chikondi-pos/validator"
)

// Repository provides data access operations over the local store. All
// timestamps it reads and writes are Unix milliseconds; all monetary amounts
// are plain floats matching the wire format.
type Repository struct {
	db       *DB
	validate *validator.Validator
}

func NewRepository(db *DB) *Repository {
	return &Repository{
		db:       db,
		validate: validator.New(),
	}
}

// marshalJSON stores nil slices as empty TEXT so reads round-trip cleanly.
func marshalJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
