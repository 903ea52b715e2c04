// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"bytes"
	"encoding/binary"
)

// LSN is the type of the log sequence number. The buffer pool and table
// pages carry one per page as a seam for a write-ahead log that is out of
// scope for this module; InvalidLSN means "no record written yet".
type LSN int32

const InvalidLSN LSN = -1

func (lsn LSN) Serialize() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, lsn)
	return buf.Bytes()
}

func NewLSNFromBytes(data []byte) (ret LSN) {
	binary.Read(bytes.NewBuffer(data), binary.LittleEndian, &ret)
	return ret
}
