// this code is grounded on the original CMU BusTub
// ParallelBufferPoolManager/BufferPoolManagerInstance split
// (original_source/src/buffer/buffer_pool_manager_instance.cpp), adapted to
// Go: one ShardedPool owns num_instances independent BufferPoolManagers and
// routes every page id to the instance it belongs to (spec.md §4.C's
// "sharded variant may run num_instances > 0 instances", SPEC_FULL.md §12.2).

package buffer

import (
	"github.com/dbcore/bustubgo/storage/disk"
	"github.com/dbcore/bustubgo/storage/page"
	"github.com/dbcore/bustubgo/types"
)

// ShardedPool routes pages across num_instances independent
// BufferPoolManagers by pageID % num_instances, matching the original's
// instance_index/next_page_id striding: instance i only ever allocates page
// ids congruent to i mod num_instances.
type ShardedPool struct {
	instances []*BufferPoolManager
	nextStart uint32
}

// NewShardedPool builds numInstances BufferPoolManagers, each sized
// poolSize/numInstances frames and sharing the same disk manager.
func NewShardedPool(poolSize, numInstances uint32, dm disk.Manager) *ShardedPool {
	if numInstances == 0 {
		numInstances = 1
	}
	perInstance := poolSize / numInstances
	instances := make([]*BufferPoolManager, numInstances)
	for i := uint32(0); i < numInstances; i++ {
		instances[i] = NewBufferPoolManager(Config{
			PoolSize:      perInstance,
			NumInstances:  numInstances,
			InstanceIndex: i,
		}, dm)
	}
	return &ShardedPool{instances: instances}
}

func (s *ShardedPool) instanceFor(pageID types.PageID) *BufferPoolManager {
	return s.instances[uint32(pageID)%uint32(len(s.instances))]
}

// NewPage allocates a fresh page from whichever instance has a free frame,
// starting from a rotating offset so allocation pressure spreads evenly
// across instances (the original's GetBufferPoolManager round-robin).
func (s *ShardedPool) NewPage(outPageID *types.PageID) *page.Page {
	n := uint32(len(s.instances))
	for i := uint32(0); i < n; i++ {
		idx := (s.nextStart + i) % n
		if pg := s.instances[idx].NewPage(outPageID); pg != nil {
			s.nextStart = (idx + 1) % n
			return pg
		}
	}
	return nil
}

func (s *ShardedPool) FetchPage(pageID types.PageID) *page.Page {
	return s.instanceFor(pageID).FetchPage(pageID)
}

func (s *ShardedPool) UnpinPage(pageID types.PageID, isDirty bool) bool {
	return s.instanceFor(pageID).UnpinPage(pageID, isDirty)
}

func (s *ShardedPool) FlushPage(pageID types.PageID) bool {
	return s.instanceFor(pageID).FlushPage(pageID)
}

func (s *ShardedPool) DeletePage(pageID types.PageID) bool {
	return s.instanceFor(pageID).DeletePage(pageID)
}

func (s *ShardedPool) FlushAllPages() {
	for _, inst := range s.instances {
		inst.FlushAllPages()
	}
}

// PoolSize returns the combined frame count across every instance.
func (s *ShardedPool) PoolSize() uint32 {
	var total uint32
	for _, inst := range s.instances {
		total += inst.PoolSize()
	}
	return total
}
