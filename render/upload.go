package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/datatex"
)

// UploadLayer creates the GPU textures for a packed layer and returns
// its GPU-resident form. On any creation failure the textures created
// so far are released and the error is returned.
//
// Texture shapes mirror the encoding: per-object textures are one row
// per object, linearly indexed textures are datatex.RowWidth wide with
// the tail row zero padded.
func UploadLayer(device Device, layer *datatex.Layer) (*Layer, error) {
	out := &Layer{
		Index:       layer.Index,
		NumObjects:  layer.NumObjects,
		Origin:      layer.Origin,
		Position:    layer.Position,
		Rotation:    layer.Rotation,
		ModelMatrix: layer.ModelMatrix,
	}

	fail := func(err error) (*Layer, error) {
		out.Destroy(device)
		return nil, err
	}

	var err error
	label := func(name string) string { return fmt.Sprintf("dtx/layer%d/%s", layer.Index, name) }

	out.Textures.Attributes, err = device.CreateTexture(&TextureDescriptor{
		Label:  label("attributes"),
		Width:  datatex.ObjectRowTexels,
		Height: layer.NumObjects,
		Format: gputypes.TextureFormatRGBA32Uint,
		Data:   encodeAttributes(layer.Attributes),
	})
	if err != nil {
		return fail(err)
	}

	out.Textures.DecodeMatrices, err = device.CreateTexture(&TextureDescriptor{
		Label:  label("decode-matrices"),
		Width:  datatex.MatrixRowTexels,
		Height: layer.NumObjects,
		Format: gputypes.TextureFormatRGBA32Float,
		Data:   encodeFloats(layer.DecodeMatrices.Values),
	})
	if err != nil {
		return fail(err)
	}

	out.Textures.InstanceMatrices, err = device.CreateTexture(&TextureDescriptor{
		Label:  label("instance-matrices"),
		Width:  datatex.MatrixRowTexels,
		Height: layer.NumObjects,
		Format: gputypes.TextureFormatRGBA32Float,
		Data:   encodeFloats(layer.InstanceMatrices.Values),
	})
	if err != nil {
		return fail(err)
	}

	out.Textures.Offsets, err = device.CreateTexture(&TextureDescriptor{
		Label:  label("offsets"),
		Width:  1,
		Height: layer.NumObjects,
		Format: gputypes.TextureFormatRGBA32Float,
		Data:   encodeOffsets(layer.Offsets),
	})
	if err != nil {
		return fail(err)
	}

	posW, posH := rowExtent(layer.Positions.Count)
	out.Textures.Positions, err = device.CreateTexture(&TextureDescriptor{
		Label:  label("positions"),
		Width:  posW,
		Height: posH,
		Format: gputypes.TextureFormatRGBA16Uint,
		Data:   encodePositions(layer.Positions, posW*posH),
	})
	if err != nil {
		return fail(err)
	}

	for kind := datatex.BucketKind(0); kind < datatex.NumBuckets; kind++ {
		bucket := layer.Buckets[kind]
		if bucket.NumIndices == 0 {
			continue
		}
		idxW, idxH := rowExtent(bucket.Indices.Triangles)
		idxTex, err := device.CreateTexture(&TextureDescriptor{
			Label:  label(fmt.Sprintf("indices-%s", kind)),
			Width:  idxW,
			Height: idxH,
			Format: bucketFormat(kind),
			Data:   encodeIndices(bucket.Indices, kind, idxW*idxH),
		})
		if err != nil {
			return fail(err)
		}
		porW, porH := rowExtent(bucket.PortionIDs.Polygons * datatex.PortionTexelsPerPolygon)
		porTex, err := device.CreateTexture(&TextureDescriptor{
			Label:  label(fmt.Sprintf("portions-%s", kind)),
			Width:  porW,
			Height: porH,
			Format: gputypes.TextureFormatR16Uint,
			Data:   encodePortions(bucket.PortionIDs, porW*porH),
		})
		if err != nil {
			device.DeleteTexture(idxTex)
			return fail(err)
		}
		out.Buckets[kind] = BucketDraw{
			NumIndices: bucket.NumIndices,
			Indices:    idxTex,
			PortionIDs: porTex,
		}
	}

	dtx.Logger().Debug("layer uploaded",
		"layer", layer.Index,
		"objects", layer.NumObjects,
		"vertices", layer.Positions.Count)
	return out, nil
}

// rowExtent returns the texture extent for count linearly addressed
// texels: full RowWidth wide, enough rows to cover count.
func rowExtent(count int) (w, h int) {
	h = (count + datatex.RowWidth - 1) / datatex.RowWidth
	if h == 0 {
		h = 1
	}
	return datatex.RowWidth, h
}

// bucketFormat maps an index-width bucket to its texture format.
func bucketFormat(kind datatex.BucketKind) gputypes.TextureFormat {
	switch kind {
	case datatex.Bucket8:
		return gputypes.TextureFormatRGBA8Uint
	case datatex.Bucket16:
		return gputypes.TextureFormatRGBA16Uint
	default:
		return gputypes.TextureFormatRGBA32Uint
	}
}

func encodeAttributes(t *datatex.AttributesTexture) []byte {
	buf := make([]byte, 0, len(t.Texels)*16)
	for _, texel := range t.Texels {
		for _, c := range texel {
			buf = binary.LittleEndian.AppendUint32(buf, c)
		}
	}
	return buf
}

func encodeFloats(values []float32) []byte {
	buf := make([]byte, 0, len(values)*4)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// encodeOffsets packs xyz offsets into RGBA texels with a zero w.
func encodeOffsets(t *datatex.OffsetsTexture) []byte {
	buf := make([]byte, 0, t.NumObjects*16)
	for o := 0; o < t.NumObjects; o++ {
		off := t.Offset(o)
		for _, v := range off {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	}
	return buf
}

// encodePositions packs one vertex per RGBA16 texel, zero w, zero tail
// padding out to texels.
func encodePositions(t *datatex.PositionsTexture, texels int) []byte {
	buf := make([]byte, texels*8)
	for i := 0; i < t.Count; i++ {
		c := t.Coord(i)
		base := i * 8
		binary.LittleEndian.PutUint16(buf[base:], c[0])
		binary.LittleEndian.PutUint16(buf[base+2:], c[1])
		binary.LittleEndian.PutUint16(buf[base+4:], c[2])
	}
	return buf
}

// encodeIndices packs one triangle per texel at the bucket's channel
// width, zero alpha, zero tail padding out to texels.
func encodeIndices(t *datatex.IndexTexture, kind datatex.BucketKind, texels int) []byte {
	switch kind {
	case datatex.Bucket8:
		buf := make([]byte, texels*4)
		for i := 0; i < t.Triangles; i++ {
			tri := t.Triangle(i)
			base := i * 4
			buf[base] = byte(tri[0])
			buf[base+1] = byte(tri[1])
			buf[base+2] = byte(tri[2])
		}
		return buf
	case datatex.Bucket16:
		buf := make([]byte, texels*8)
		for i := 0; i < t.Triangles; i++ {
			tri := t.Triangle(i)
			base := i * 8
			binary.LittleEndian.PutUint16(buf[base:], uint16(tri[0]))
			binary.LittleEndian.PutUint16(buf[base+2:], uint16(tri[1]))
			binary.LittleEndian.PutUint16(buf[base+4:], uint16(tri[2]))
		}
		return buf
	default:
		buf := make([]byte, texels*16)
		for i := 0; i < t.Triangles; i++ {
			tri := t.Triangle(i)
			base := i * 16
			binary.LittleEndian.PutUint32(buf[base:], tri[0])
			binary.LittleEndian.PutUint32(buf[base+4:], tri[1])
			binary.LittleEndian.PutUint32(buf[base+8:], tri[2])
		}
		return buf
	}
}

// encodePortions packs the high/low word stream one word per R16 texel,
// zero tail padding out to texels.
func encodePortions(t *datatex.PortionTexture, texels int) []byte {
	buf := make([]byte, texels*2)
	for i, id := range t.IDs {
		binary.LittleEndian.PutUint16(buf[i*2:], id)
	}
	return buf
}
