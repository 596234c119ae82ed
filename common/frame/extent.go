package frame

import (
	"encoding/binary"

	"github.com/hulkholden/snowglobe/common/wgsltypes"
)

// Extent is the size of the output surface as seen by kernels, which need
// it to bounds-check threads launched past the last row or column.
type Extent struct {
	width  uint32
	height uint32
	pad0   uint32
	pad1   uint32
}

var ExtentStruct = wgsltypes.MustRegisterStruct[Extent]()

func NewExtent(width, height int) Extent {
	return Extent{width: uint32(width), height: uint32(height)}
}

func (e Extent) Width() int  { return int(e.width) }
func (e Extent) Height() int { return int(e.height) }

// Pixels returns the number of pixels covered.
func (e Extent) Pixels() int { return int(e.width) * int(e.height) }

func (e Extent) Bytes() []byte {
	buf := make([]byte, ExtentStruct.Size)
	binary.LittleEndian.PutUint32(buf[ExtentStruct.MustOffsetOf("width"):], e.width)
	binary.LittleEndian.PutUint32(buf[ExtentStruct.MustOffsetOf("height"):], e.height)
	return buf
}
