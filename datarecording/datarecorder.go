// Package datarecording can store simulation records in a SQLite database.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table that stores entries shaped like the
	// sample entry
	CreateTable(tableName string, sampleEntry any)

	// InsertData writes an entry into a table that already exists
	InsertData(tableName string, entry any)

	// ListTables returns a slice containing names of all tables
	ListTables() []string

	// Flush flushes all the buffered entries into the database
	Flush()
}

// New creates a new DataRecorder backed by a SQLite file at the given path.
func New(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into SQLite database
type sqliteWriter struct {
	*sql.DB

	dbName    string
	tables    map[string]*table
	batchSize int
}

func (t *sqliteWriter) init() {
	if t.dbName == "" {
		t.dbName = "nyuzisim_data_recording_" + xid.New().String()
	}

	filename := t.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func (t *sqliteWriter) isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (t *sqliteWriter) structFields(entry any) []reflect.StructField {
	structType := reflect.TypeOf(entry)

	fields := make([]reflect.StructField, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if !t.isAllowedType(field.Type.Kind()) {
			panic(fmt.Errorf("field %s has unsupported type %s",
				field.Name, field.Type))
		}

		fields = append(fields, field)
	}

	return fields
}

// CreateTable creates a table whose columns are the fields of the sample
// entry. Entries inserted later must have the same type as the sample.
func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	if _, found := t.tables[tableName]; found {
		panic(fmt.Errorf("table %s already exists", tableName))
	}

	fields := t.structFields(sampleEntry)

	columns := make([]string, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, field.Name)
	}

	createStmt := fmt.Sprintf("CREATE TABLE %s (%s);",
		tableName, strings.Join(columns, ", "))

	_, err := t.Exec(createStmt)
	if err != nil {
		panic(err)
	}

	t.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
}

// InsertData buffers one entry for the given table. The buffered entries are
// written out in batches and on Flush.
func (t *sqliteWriter) InsertData(tableName string, entry any) {
	tbl, found := t.tables[tableName]
	if !found {
		panic(fmt.Errorf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != tbl.structType {
		panic(fmt.Errorf("entry type %s does not match table %s",
			reflect.TypeOf(entry), tableName))
	}

	tbl.entries = append(tbl.entries, entry)

	if len(tbl.entries) >= t.batchSize {
		t.flushTable(tableName, tbl)
	}
}

// ListTables returns the names of all the created tables.
func (t *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(t.tables))
	for name := range t.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes all the buffered entries into the database.
func (t *sqliteWriter) Flush() {
	for name, tbl := range t.tables {
		t.flushTable(name, tbl)
	}
}

func (t *sqliteWriter) flushTable(tableName string, tbl *table) {
	if len(tbl.entries) == 0 {
		return
	}

	tx, err := t.Begin()
	if err != nil {
		panic(err)
	}

	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", tbl.structType.NumField()), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO %s VALUES (%s);",
		tableName, placeholders)

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		panic(err)
	}

	for _, entry := range tbl.entries {
		value := reflect.ValueOf(entry)

		args := make([]any, 0, value.NumField())
		for i := 0; i < value.NumField(); i++ {
			args = append(args, value.Field(i).Interface())
		}

		_, err := stmt.Exec(args...)
		if err != nil {
			panic(err)
		}
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	tbl.entries = nil
}
