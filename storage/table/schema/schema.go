// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (storage/table/schema.go); kept in its own leaf package, mirroring the
// teacher's own storage/table/schema package, so that storage/tuple can
// depend on column/type layout without importing the table package that
// in turn depends on tuple.

package schema

// Schema is an ordered list of Columns describing a table's tuple
// layout.
type Schema struct {
	columns []*Column
}

func NewSchema(columns []*Column) *Schema {
	offset := uint32(0)
	for _, c := range columns {
		c.SetOffset(offset)
		if c.IsInlined() {
			offset += c.FixedLength()
		}
	}
	return &Schema{columns: columns}
}

func (s *Schema) GetColumn(index uint32) *Column { return s.columns[index] }
func (s *Schema) GetColumnCount() uint32         { return uint32(len(s.columns)) }
func (s *Schema) GetColumns() []*Column          { return s.columns }

// GetColIndex returns the index of the column named name, or false if no
// such column exists.
func (s *Schema) GetColIndex(name string) (uint32, bool) {
	for i, c := range s.columns {
		if c.GetColumnName() == name {
			return uint32(i), true
		}
	}
	return 0, false
}
