package metricblock

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/iamNilotpal/ember/pkg/errors"
)

// CompressedBlock is the self-delimited byte-vector form of a Block,
// mirroring TimeSeriesBlockCompressed in the original source.
type CompressedBlock struct {
	data []byte
}

// Bytes returns the compressed byte vector.
func (c *CompressedBlock) Bytes() []byte {
	return c.data
}

// FromBytes wraps an already-compressed byte vector, e.g. one just read
// back from a segment's metric_store.bin.
func FromBytes(data []byte) *CompressedBlock {
	return &CompressedBlock{data: data}
}

// Compress encodes the block's points as a byte vector: the point count,
// followed by a delta-of-delta/zigzag/varint timestamp stream, followed by
// a Gorilla-style XOR bit-packed value stream. Fails with EmptyBlock if the
// block has no points.
func (b *Block) Compress() (*CompressedBlock, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.points) == 0 {
		return nil, errors.NewEmptyBlockError()
	}

	header := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(header, uint64(len(b.points)))
	out := append([]byte(nil), header[:n]...)

	out = append(out, encodeTimestamps(b.points)...)
	out = append(out, encodeValues(b.points)...)
	return &CompressedBlock{data: out}, nil
}

// Decompress is the inverse of Compress, returning a new Block holding the
// original, bit-exact points in their original sort order.
func (c *CompressedBlock) Decompress() (*Block, error) {
	if len(c.data) == 0 {
		return nil, errors.NewEmptyBlockError()
	}

	count, n := binary.Uvarint(c.data)
	if n <= 0 {
		return nil, errors.NewBlockError(nil, errors.ErrorCodeEmptyBlock, "corrupt time-series block header")
	}
	rest := c.data[n:]

	times, rest, err := decodeTimestamps(rest, int(count))
	if err != nil {
		return nil, err
	}

	values, err := decodeValues(rest, int(count))
	if err != nil {
		return nil, err
	}

	points := make([]Point, count)
	for i := range points {
		points[i] = Point{Time: times[i], Value: values[i]}
	}
	return NewWithPoints(points), nil
}

// zigzagEncode maps a signed delta to an unsigned value so small magnitudes
// of either sign stay small after varint encoding.
func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// encodeTimestamps writes the first timestamp in full, then every
// subsequent timestamp as a zigzag-varint-encoded delta-of-delta, per
// arloliu-mebo's TimestampDeltaEncoder.
func encodeTimestamps(points []Point) []byte {
	out := make([]byte, 0, len(points)*2)
	buf := make([]byte, binary.MaxVarintLen64)

	var prevTime, prevDelta int64
	for i, p := range points {
		t := int64(p.Time)
		switch i {
		case 0:
			n := binary.PutUvarint(buf, uint64(t))
			out = append(out, buf[:n]...)
		case 1:
			delta := t - prevTime
			n := binary.PutUvarint(buf, zigzagEncode(delta))
			out = append(out, buf[:n]...)
			prevDelta = delta
		default:
			delta := t - prevTime
			dod := delta - prevDelta
			n := binary.PutUvarint(buf, zigzagEncode(dod))
			out = append(out, buf[:n]...)
			prevDelta = delta
		}
		prevTime = t
	}
	return out
}

func decodeTimestamps(data []byte, count int) ([]uint64, []byte, error) {
	out := make([]uint64, count)
	var prevTime, prevDelta int64

	for i := 0; i < count; i++ {
		raw, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, nil, errors.NewBlockError(nil, errors.ErrorCodeEmptyBlock, "corrupt timestamp stream")
		}
		data = data[n:]

		var t int64
		switch i {
		case 0:
			t = int64(raw)
		case 1:
			delta := zigzagDecode(raw)
			t = prevTime + delta
			prevDelta = delta
		default:
			dod := zigzagDecode(raw)
			delta := prevDelta + dod
			t = prevTime + delta
			prevDelta = delta
		}
		out[i] = uint64(t)
		prevTime = t
	}
	return out, data, nil
}

// bitWriter accumulates individual bits MSB-first into a byte slice, the
// packing primitive the Gorilla value codec needs.
type bitWriter struct {
	buf  []byte
	cur  byte
	bits uint
}

func (w *bitWriter) writeBit(bit bool) {
	w.cur <<= 1
	if bit {
		w.cur |= 1
	}
	w.bits++
	if w.bits == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.bits = 0
	}
}

func (w *bitWriter) writeBits(value uint64, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		w.writeBit((value>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) flush() []byte {
	if w.bits > 0 {
		w.cur <<= (8 - w.bits)
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.bits = 0
	}
	return w.buf
}

type bitReader struct {
	buf  []byte
	pos  int
	bits uint
}

func (r *bitReader) readBit() (bool, error) {
	if r.pos >= len(r.buf) {
		return false, errors.NewBlockError(nil, errors.ErrorCodeEmptyBlock, "corrupt value stream: unexpected end")
	}
	bit := (r.buf[r.pos]>>(7-r.bits))&1 == 1
	r.bits++
	if r.bits == 8 {
		r.bits = 0
		r.pos++
	}
	return bit, nil
}

func (r *bitReader) readBits(n uint) (uint64, error) {
	var value uint64
	for i := uint(0); i < n; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		value <<= 1
		if bit {
			value |= 1
		}
	}
	return value, nil
}

// encodeValues bit-packs the value stream Gorilla-style: the first value is
// stored raw; each subsequent value is XORed against the previous, and
// either a single zero-bit (identical to the previous) or the XOR's
// leading/trailing zero-count plus its meaningful bits are written.
func encodeValues(points []Point) []byte {
	w := &bitWriter{}
	w.writeBits(math.Float64bits(points[0].Value), 64)

	prevBits := math.Float64bits(points[0].Value)
	var prevLeading, prevTrailing int = -1, -1

	for _, p := range points[1:] {
		curBits := math.Float64bits(p.Value)
		xor := prevBits ^ curBits

		if xor == 0 {
			w.writeBit(false)
			prevBits = curBits
			continue
		}
		w.writeBit(true)

		leading := bits.LeadingZeros64(xor)
		trailing := bits.TrailingZeros64(xor)

		if prevLeading >= 0 && leading >= prevLeading && trailing >= prevTrailing {
			w.writeBit(false)
			meaningful := 64 - prevLeading - prevTrailing
			w.writeBits(xor>>uint(prevTrailing), uint(meaningful))
		} else {
			w.writeBit(true)
			w.writeBits(uint64(leading), 6)
			meaningful := 64 - leading - trailing
			// meaningful ranges [1,64]; store meaningful-1 so it always fits
			// in 6 bits (a bare 64 would wrap to 0 and desync the stream).
			w.writeBits(uint64(meaningful-1), 6)
			w.writeBits(xor>>uint(trailing), uint(meaningful))
			prevLeading, prevTrailing = leading, trailing
		}
		prevBits = curBits
	}

	return w.flush()
}

func decodeValues(data []byte, count int) ([]float64, error) {
	r := &bitReader{buf: data}

	firstBits, err := r.readBits(64)
	if err != nil {
		return nil, err
	}

	values := make([]float64, count)
	values[0] = math.Float64frombits(firstBits)

	prevBits := firstBits
	var prevLeading, prevTrailing uint

	for i := 1; i < count; i++ {
		controlBit, err := r.readBit()
		if err != nil {
			return nil, err
		}
		if !controlBit {
			values[i] = math.Float64frombits(prevBits)
			continue
		}

		newWindow, err := r.readBit()
		if err != nil {
			return nil, err
		}

		var leading, trailing uint
		if !newWindow {
			leading, trailing = prevLeading, prevTrailing
		} else {
			l, err := r.readBits(6)
			if err != nil {
				return nil, err
			}
			m, err := r.readBits(6)
			if err != nil {
				return nil, err
			}
			leading = uint(l)
			trailing = 64 - leading - (uint(m) + 1)
		}

		meaningful := 64 - leading - trailing
		bitsVal, err := r.readBits(meaningful)
		if err != nil {
			return nil, err
		}

		xor := bitsVal << trailing
		curBits := prevBits ^ xor
		values[i] = math.Float64frombits(curBits)

		prevBits = curBits
		prevLeading, prevTrailing = leading, trailing
	}

	return values, nil
}
