// this code is adapted from https://github.com/ryogrid/SamehadaDB
// (catalog/catalog.go, catalog/table_metadata.go, catalog/statistics.go,
// itself from https://github.com/brunocalza/go-bustub): spec.md §1 treats
// the catalog as "a simple mapping from table/index oids to metadata and
// heap handles", out of scope to design further, so the persistent
// reload/WAL machinery the teacher's fuller catalog package carries is
// dropped in favor of the original go-bustub shape: an in-memory map kept
// alive for the lifetime of the process.

package catalog

import (
	"github.com/dbcore/bustubgo/concurrency"
	"github.com/dbcore/bustubgo/container/hash"
	"github.com/dbcore/bustubgo/storage/buffer"
	"github.com/dbcore/bustubgo/storage/table"
	"github.com/dbcore/bustubgo/storage/table/schema"
)

// TableMetadata bundles a table's name, schema, and heap handle under the
// oid the catalog assigned it.
type TableMetadata struct {
	Schema *schema.Schema
	Name   string
	Heap   *table.TableHeap
	OID    uint32
}

// IndexMetadata bundles a hash index's name, owning table, and key schema.
type IndexMetadata struct {
	Name        string
	TableName   string
	Index       *hash.ExtendibleHashTable
	KeySchema   *schema.Schema
	KeyColIndex uint32
	OID         uint32
}

// Catalog is the non-persistent oid->metadata map the executors consult
// to resolve a plan's table and index references (spec.md §1).
type Catalog struct {
	bpm         *buffer.BufferPoolManager
	lockManager *concurrency.LockManager

	tables      map[uint32]*TableMetadata
	tableNames  map[string]uint32
	nextTableID uint32

	indexes      map[uint32]*IndexMetadata
	indexNames   map[string]uint32
	tableIndexes map[string][]uint32
	nextIndexID  uint32
}

func NewCatalog(bpm *buffer.BufferPoolManager, lockManager *concurrency.LockManager) *Catalog {
	return &Catalog{
		bpm:          bpm,
		lockManager:  lockManager,
		tables:       make(map[uint32]*TableMetadata),
		tableNames:   make(map[string]uint32),
		indexes:      make(map[uint32]*IndexMetadata),
		indexNames:   make(map[string]uint32),
		tableIndexes: make(map[string][]uint32),
	}
}

// CreateTable allocates a fresh table heap and registers it under name.
func (c *Catalog) CreateTable(name string, sch *schema.Schema) *TableMetadata {
	oid := c.nextTableID
	c.nextTableID++
	c.tableNames[name] = oid

	heap := table.NewTableHeap(c.bpm, c.lockManager, oid)
	meta := &TableMetadata{Schema: sch, Name: name, Heap: heap, OID: oid}
	c.tables[oid] = meta
	return meta
}

func (c *Catalog) GetTableByName(name string) *TableMetadata {
	oid, ok := c.tableNames[name]
	if !ok {
		return nil
	}
	return c.tables[oid]
}

func (c *Catalog) GetTableByOID(oid uint32) *TableMetadata {
	return c.tables[oid]
}

// CreateIndex builds a fresh extendible hash index over one column of
// tableName's tuples and registers it under indexName.
func (c *Catalog) CreateIndex(indexName, tableName string, keySchema *schema.Schema, keyColIndex uint32) *IndexMetadata {
	oid := c.nextIndexID
	c.nextIndexID++
	c.indexNames[indexName] = oid

	meta := &IndexMetadata{
		Name:        indexName,
		TableName:   tableName,
		Index:       hash.NewExtendibleHashTable(c.bpm),
		KeySchema:   keySchema,
		KeyColIndex: keyColIndex,
		OID:         oid,
	}
	c.indexes[oid] = meta
	c.tableIndexes[tableName] = append(c.tableIndexes[tableName], oid)
	return meta
}

func (c *Catalog) GetIndexByName(indexName string) *IndexMetadata {
	oid, ok := c.indexNames[indexName]
	if !ok {
		return nil
	}
	return c.indexes[oid]
}

func (c *Catalog) GetIndexByOID(oid uint32) *IndexMetadata {
	return c.indexes[oid]
}

// GetTableIndexes returns every index built over tableName.
func (c *Catalog) GetTableIndexes(tableName string) []*IndexMetadata {
	oids := c.tableIndexes[tableName]
	metas := make([]*IndexMetadata, 0, len(oids))
	for _, oid := range oids {
		metas = append(metas, c.indexes[oid])
	}
	return metas
}

func (c *Catalog) GetBufferPoolManager() *buffer.BufferPoolManager { return c.bpm }
