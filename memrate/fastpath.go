package memrate

import "unsafe"

// stosPattern is the 0xaa fill replicated to a full word; the narrower
// string stores use its low bytes.
const stosPattern uint64 = 0xaaaaaaaaaaaaaaaa

// ntPattern feeds the 128-bit non-temporal stores.
var ntPattern = pattern[vec128]()

// stosRun drives a bulk string-store primitive over the region in chunks of
// at most 1 MiB, with a residual pass for whatever is left, mirroring how
// the rate-limited variant chunks. wrSize is the store width in bytes.
func stosRun(inv *Invocation, wrSize int, store func(p unsafe.Pointer, count uint64)) Result {
	base := inv.Region.Base()
	size := inv.Region.Size()
	chunk := min(size, maxSpeedChunk)

	off := 0
	for off+chunk <= size {
		store(unsafe.Add(base, off), uint64(chunk/wrSize))
		off += chunk
		if canceled(inv.Stop) {
			return Result{KBytes: uint64(off) / 1024, Valid: true}
		}
	}
	if rem := size - off; rem > 0 {
		store(unsafe.Add(base, off), uint64(rem/wrSize))
		off = size
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// stosRunRate is stosRun paced toward mbs MB/s. The residual tail is paced
// like a full chunk.
func stosRunRate(inv *Invocation, mbs uint64, wrSize int, store func(p unsafe.Pointer, count uint64)) Result {
	base := inv.Region.Base()
	size := inv.Region.Size()
	chunk := min(size, mb)
	p := newPacer(uint64(chunk), mbs, inv.Stop)

	off := 0
	for off+chunk <= size {
		store(unsafe.Add(base, off), uint64(chunk/wrSize))
		off += chunk
		if !p.pace() {
			return Result{KBytes: uint64(off) / 1024, Valid: true}
		}
	}
	if rem := size - off; rem > 0 {
		store(unsafe.Add(base, off), uint64(rem/wrSize))
		off = size
		p.pace()
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

func writeStos64(inv *Invocation) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRun(inv, 8, func(p unsafe.Pointer, n uint64) { repStos64(p, stosPattern, n) })
}

func writeStosRate64(inv *Invocation, mbs uint64) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRunRate(inv, mbs, 8, func(p unsafe.Pointer, n uint64) { repStos64(p, stosPattern, n) })
}

func writeStos32(inv *Invocation) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRun(inv, 4, func(p unsafe.Pointer, n uint64) { repStos32(p, stosPattern, n) })
}

func writeStosRate32(inv *Invocation, mbs uint64) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRunRate(inv, mbs, 4, func(p unsafe.Pointer, n uint64) { repStos32(p, stosPattern, n) })
}

func writeStos16(inv *Invocation) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRun(inv, 2, func(p unsafe.Pointer, n uint64) { repStos16(p, stosPattern, n) })
}

func writeStosRate16(inv *Invocation, mbs uint64) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRunRate(inv, mbs, 2, func(p unsafe.Pointer, n uint64) { repStos16(p, stosPattern, n) })
}

func writeStos8(inv *Invocation) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRun(inv, 1, func(p unsafe.Pointer, n uint64) { repStos8(p, stosPattern, n) })
}

func writeStosRate8(inv *Invocation, mbs uint64) Result {
	if !hasRepStos {
		return Result{}
	}
	return stosRunRate(inv, mbs, 1, func(p unsafe.Pointer, n uint64) { repStos8(p, stosPattern, n) })
}

// ntRun drives a non-temporal store primitive over the region. The element
// counts handed to the primitive are always multiples of its unroll factor
// because the region and all chunk sizes are multiples of 1024 bytes.
func ntRun(inv *Invocation, esz int, store func(p unsafe.Pointer, count uint64)) Result {
	if !hasNTStore {
		return Result{}
	}
	base := inv.Region.Base()
	size := inv.Region.Size()

	off := 0
	for off < size {
		end := min(off+maxSpeedChunk, size)
		store(unsafe.Add(base, off), uint64((end-off)/esz))
		off = end
		if canceled(inv.Stop) {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// ntRunRate is ntRun paced toward mbs MB/s, chunked by the pacing engine's
// group math.
func ntRunRate(inv *Invocation, mbs uint64, esz int, store func(p unsafe.Pointer, count uint64)) Result {
	if !hasNTStore {
		return Result{}
	}
	base := inv.Region.Base()
	size := inv.Region.Size()
	group := esz * 16
	chunk := int(chunkGroups(uint64(size), uint64(group))) * group
	p := newPacer(uint64(chunk), mbs, inv.Stop)

	off := 0
	for off < size {
		end := min(off+chunk, size)
		store(unsafe.Add(base, off), uint64((end-off)/esz))
		off = end
		if !p.pace() {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

func writeNT128(inv *Invocation) Result {
	return ntRun(inv, 16, func(p unsafe.Pointer, n uint64) { ntStore128(p, unsafe.Pointer(&ntPattern), n) })
}

func writeNTRate128(inv *Invocation, mbs uint64) Result {
	return ntRunRate(inv, mbs, 16, func(p unsafe.Pointer, n uint64) { ntStore128(p, unsafe.Pointer(&ntPattern), n) })
}

func writeNT64(inv *Invocation) Result {
	return ntRun(inv, 8, func(p unsafe.Pointer, n uint64) { ntStore64(p, stosPattern, n) })
}

func writeNTRate64(inv *Invocation, mbs uint64) Result {
	return ntRunRate(inv, mbs, 8, func(p unsafe.Pointer, n uint64) { ntStore64(p, stosPattern, n) })
}

func writeNT32(inv *Invocation) Result {
	return ntRun(inv, 4, func(p unsafe.Pointer, n uint64) { ntStore32(p, stosPattern, n) })
}

func writeNTRate32(inv *Invocation, mbs uint64) Result {
	return ntRunRate(inv, mbs, 4, func(p unsafe.Pointer, n uint64) { ntStore32(p, stosPattern, n) })
}

// readPrefetch64 reads the region with 64-bit loads assisted by a hardware
// prefetch 2 KiB ahead of the load cursor.
func readPrefetch64(inv *Invocation) Result {
	if !hasPrefetch {
		return Result{}
	}
	base := inv.Region.Base()
	size := inv.Region.Size()

	off := 0
	for off < size {
		end := min(off+maxSpeedChunk, size)
		prefetchRead64(unsafe.Add(base, off), uint64((end-off)/8))
		off = end
		if canceled(inv.Stop) {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// readPrefetchRate64 is readPrefetch64 paced toward mbs MB/s.
func readPrefetchRate64(inv *Invocation, mbs uint64) Result {
	if !hasPrefetch {
		return Result{}
	}
	base := inv.Region.Base()
	size := inv.Region.Size()
	const group = 8 * 16
	chunk := int(chunkGroups(uint64(size), group)) * group
	p := newPacer(uint64(chunk), mbs, inv.Stop)

	off := 0
	for off < size {
		end := min(off+chunk, size)
		prefetchRead64(unsafe.Add(base, off), uint64((end-off)/8))
		off = end
		if !p.pace() {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}
