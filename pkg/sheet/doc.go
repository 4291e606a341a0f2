// Package sheet reads the tabular datasets a merge runs over.
//
// A dataset is a CSV file whose first record is the header row. Cells are
// typed with merge.ParseValue so numbers, booleans and ISO 8601 dates compare
// the same way condition values do.
//
// Datasets are located by name through an Opener. FSOpener reads from any
// fs.FS (typically os.DirFS); StorageOpener reads from object storage.
// Names without an extension get ".csv" appended.
package sheet
