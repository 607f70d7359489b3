package postgres // import "github.com/joincivil/civil-content-registry/pkg/persistence/postgres"

import (
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"
)

var dbMapper = reflectx.NewMapper("db")

// DbFieldNameFromModelName gets the db tag name of a field of a db struct
func DbFieldNameFromModelName(exampleStruct interface{}, fieldName string) (string, error) {
	structMap := dbMapper.TypeMap(reflect.TypeOf(exampleStruct))
	for _, fi := range structMap.Index {
		if fi.Field.Name == fieldName {
			return fi.Name, nil
		}
	}
	return "", errors.Errorf("no db field for %v", fieldName)
}

// GetAllStructFieldsForQuery returns the comma separated db names of every
// field of a db struct, and if colon is true, the same names prefixed with a
// colon for use in named queries
func GetAllStructFieldsForQuery(exampleStruct interface{}, colon bool) (string, string) {
	structMap := dbMapper.TypeMap(reflect.TypeOf(exampleStruct))
	names := make([]string, 0, len(structMap.Index))
	for _, fi := range structMap.Index {
		names = append(names, fi.Name)
	}
	fields := strings.Join(names, ", ")
	if !colon {
		return fields, ""
	}
	return fields, ":" + strings.Join(names, ", :")
}
