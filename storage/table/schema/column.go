// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (lib/storage/table/column/column.go), dropping the index-kind/header
// page fields since this project's catalog keeps each hash index's
// key column in its own IndexMetadata rather than per-column index
// metadata.

package schema

import "github.com/dbcore/bustubgo/types"

// Column describes one attribute of a Schema: its name, type, and the
// byte layout a Tuple encodes it with.
type Column struct {
	name         string
	columnType   types.TypeID
	fixedLength  uint32
	isInlined    bool
	columnOffset uint32
}

func NewColumn(name string, columnType types.TypeID) *Column {
	if columnType == types.Varchar {
		return &Column{name: name, columnType: columnType, fixedLength: 0, isInlined: false}
	}
	return &Column{name: name, columnType: columnType, fixedLength: columnType.Size() + 1, isInlined: true}
}

func (c *Column) GetColumnName() string   { return c.name }
func (c *Column) GetType() types.TypeID   { return c.columnType }
func (c *Column) IsInlined() bool         { return c.isInlined }
func (c *Column) FixedLength() uint32     { return c.fixedLength }
func (c *Column) GetOffset() uint32       { return c.columnOffset }
func (c *Column) SetOffset(offset uint32) { c.columnOffset = offset }
