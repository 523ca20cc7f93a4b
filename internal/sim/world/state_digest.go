package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// stateDigest hashes everything that can change during a run: the tick,
// every cell in grid order and every ant in tick order. Two worlds built
// from the same scenario produce identical digests tick for tick.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, uint64(w.grid.Radius()))
	for c, cell := range w.grid.All() {
		if cell == (Cell{}) {
			continue
		}
		digestWriteI64(h, &tmp, int64(c.R))
		digestWriteI64(h, &tmp, int64(c.S))
		h.Write([]byte{
			boolByte(cell.HasNest), byte(cell.Nest),
			boolByte(cell.Obstacle),
			boolByte(cell.HasPheromone), byte(cell.Pheromone.Scent), byte(cell.Pheromone.Colony),
		})
		digestWriteU64(h, &tmp, uint64(cell.Food))
	}

	digestWriteU64(h, &tmp, uint64(len(w.ants)))
	for _, a := range w.ants {
		digestWriteI64(h, &tmp, int64(a.Pos.R))
		digestWriteI64(h, &tmp, int64(a.Pos.S))
		digestWriteI64(h, &tmp, int64(a.Pos.Q))
		h.Write([]byte{byte(a.Colony), byte(a.Facing), a.Food, a.Capacity})
		digestWriteI64(h, &tmp, int64(a.PC))
		digestWriteU64(h, &tmp, uint64(a.Flag))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the digest of the current state at the current tick.
func (w *World) Digest() string { return w.stateDigest(w.tick.Load()) }

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hash.Hash, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
