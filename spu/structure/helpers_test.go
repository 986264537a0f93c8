package structure_test

import (
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/codec"
)

func codecPayload(id types.GSID) codec.Payload {
	return codec.Payload{ID: id, Key: types.KeyOf(1)}
}
