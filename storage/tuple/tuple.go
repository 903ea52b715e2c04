// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (storage/table/tuple.go); the original encodes each column in place
// with unsafe.Pointer casts and never implements varchar. This version
// instead concatenates each column's types.Value.Serialize() output in
// schema order and walks it at read time, since Value already knows how
// to self-describe a varchar's length; see DESIGN.md.

package tuple

import (
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/storage/table/schema"
	"github.com/dbcore/bustubgo/types"
)

type Tuple struct {
	rid  page.RID
	data []byte
}

func NewTupleFromValues(values []types.Value) *Tuple {
	var data []byte
	for _, v := range values {
		data = append(data, v.Serialize()...)
	}
	return &Tuple{data: data}
}

func NewTupleFromBytes(data []byte, rid page.RID) *Tuple {
	return &Tuple{rid: rid, data: data}
}

func (t *Tuple) GetRID() page.RID   { return t.rid }
func (t *Tuple) SetRID(rid page.RID) { t.rid = rid }
func (t *Tuple) Size() uint32       { return uint32(len(t.data)) }
func (t *Tuple) Data() []byte       { return t.data }

// encodedLen reports how many bytes a value of colType occupies,
// starting at data, without decoding it.
func encodedLen(data []byte, colType types.TypeID) uint32 {
	if colType == types.Varchar {
		length := uint32(data[1]) | uint32(data[2])<<8
		return 3 + length
	}
	return colType.Size() + 1
}

// GetValue decodes the value of the column at colIndex, walking past
// every preceding column's encoding to find its offset.
func (t *Tuple) GetValue(sch *schema.Schema, colIndex uint32) types.Value {
	offset := uint32(0)
	for i := uint32(0); i < colIndex; i++ {
		offset += encodedLen(t.data[offset:], sch.GetColumn(i).GetType())
	}
	return types.NewValueFromBytes(t.data[offset:], sch.GetColumn(colIndex).GetType())
}

// GetValues decodes every column in schema order in a single pass.
func (t *Tuple) GetValues(sch *schema.Schema) []types.Value {
	values := make([]types.Value, sch.GetColumnCount())
	offset := uint32(0)
	for i := uint32(0); i < sch.GetColumnCount(); i++ {
		colType := sch.GetColumn(i).GetType()
		values[i] = types.NewValueFromBytes(t.data[offset:], colType)
		offset += encodedLen(t.data[offset:], colType)
	}
	return values
}
