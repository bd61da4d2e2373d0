package memrate

import "unsafe"

// Wide element types for the vector-width kernels. Loads and stores of
// these compile to the widest moves the target supports.
type (
	vec128  [2]uint64
	vec256  [4]uint64
	vec512  [8]uint64
	vec1024 [16]uint64
)

// element is the set of access widths the generic kernels are instantiated
// over, from single bytes up to 1024-bit vectors.
type element interface {
	uint8 | uint16 | uint32 | uint64 | vec128 | vec256 | vec512 | vec1024
}

// pattern returns an element with every byte set to 0xaa, the value all
// write kernels store.
func pattern[T element]() T {
	var v T
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	for i := range b {
		b[i] = 0xaa
	}
	return v
}

// scanRead walks the whole region with loads of width T, unrolled in groups
// of 16. The accumulator escapes through the invocation sink so the loads
// survive compilation. Cancellation is checked once per chunk; a canceled
// call returns the kilobytes it managed to touch.
func scanRead[T element](inv *Invocation) Result {
	var v T
	inv.sink = unsafe.Pointer(&v)
	base := inv.Region.Base()
	size := inv.Region.Size()
	esz := int(unsafe.Sizeof(v))
	group := esz * 16

	off := 0
	for off < size {
		chunkEnd := min(off+maxSpeedChunk, size)
		for off+group <= chunkEnd {
			p := unsafe.Add(base, off)
			v = *(*T)(p)
			v = *(*T)(unsafe.Add(p, esz))
			v = *(*T)(unsafe.Add(p, 2*esz))
			v = *(*T)(unsafe.Add(p, 3*esz))
			v = *(*T)(unsafe.Add(p, 4*esz))
			v = *(*T)(unsafe.Add(p, 5*esz))
			v = *(*T)(unsafe.Add(p, 6*esz))
			v = *(*T)(unsafe.Add(p, 7*esz))
			v = *(*T)(unsafe.Add(p, 8*esz))
			v = *(*T)(unsafe.Add(p, 9*esz))
			v = *(*T)(unsafe.Add(p, 10*esz))
			v = *(*T)(unsafe.Add(p, 11*esz))
			v = *(*T)(unsafe.Add(p, 12*esz))
			v = *(*T)(unsafe.Add(p, 13*esz))
			v = *(*T)(unsafe.Add(p, 14*esz))
			v = *(*T)(unsafe.Add(p, 15*esz))
			off += group
		}
		for off < chunkEnd {
			v = *(*T)(unsafe.Add(base, off))
			off += esz
		}
		if canceled(inv.Stop) {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// scanReadRate is scanRead throttled toward mbs MB/s by the pacing engine.
func scanReadRate[T element](inv *Invocation, mbs uint64) Result {
	var v T
	inv.sink = unsafe.Pointer(&v)
	base := inv.Region.Base()
	size := inv.Region.Size()
	esz := int(unsafe.Sizeof(v))
	group := esz * 16
	chunk := int(chunkGroups(uint64(size), uint64(group))) * group
	p := newPacer(uint64(chunk), mbs, inv.Stop)

	off := 0
	for off < size {
		chunkEnd := min(off+chunk, size)
		for off+group <= chunkEnd {
			q := unsafe.Add(base, off)
			v = *(*T)(q)
			v = *(*T)(unsafe.Add(q, esz))
			v = *(*T)(unsafe.Add(q, 2*esz))
			v = *(*T)(unsafe.Add(q, 3*esz))
			v = *(*T)(unsafe.Add(q, 4*esz))
			v = *(*T)(unsafe.Add(q, 5*esz))
			v = *(*T)(unsafe.Add(q, 6*esz))
			v = *(*T)(unsafe.Add(q, 7*esz))
			v = *(*T)(unsafe.Add(q, 8*esz))
			v = *(*T)(unsafe.Add(q, 9*esz))
			v = *(*T)(unsafe.Add(q, 10*esz))
			v = *(*T)(unsafe.Add(q, 11*esz))
			v = *(*T)(unsafe.Add(q, 12*esz))
			v = *(*T)(unsafe.Add(q, 13*esz))
			v = *(*T)(unsafe.Add(q, 14*esz))
			v = *(*T)(unsafe.Add(q, 15*esz))
			off += group
		}
		for off < chunkEnd {
			v = *(*T)(unsafe.Add(base, off))
			off += esz
		}
		if !p.pace() {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// scanWrite walks the whole region with stores of width T, unrolled in
// groups of 16, writing the 0xaa pattern.
func scanWrite[T element](inv *Invocation) Result {
	v := pattern[T]()
	base := inv.Region.Base()
	size := inv.Region.Size()
	esz := int(unsafe.Sizeof(v))
	group := esz * 16

	off := 0
	for off < size {
		chunkEnd := min(off+maxSpeedChunk, size)
		for off+group <= chunkEnd {
			p := unsafe.Add(base, off)
			*(*T)(p) = v
			*(*T)(unsafe.Add(p, esz)) = v
			*(*T)(unsafe.Add(p, 2*esz)) = v
			*(*T)(unsafe.Add(p, 3*esz)) = v
			*(*T)(unsafe.Add(p, 4*esz)) = v
			*(*T)(unsafe.Add(p, 5*esz)) = v
			*(*T)(unsafe.Add(p, 6*esz)) = v
			*(*T)(unsafe.Add(p, 7*esz)) = v
			*(*T)(unsafe.Add(p, 8*esz)) = v
			*(*T)(unsafe.Add(p, 9*esz)) = v
			*(*T)(unsafe.Add(p, 10*esz)) = v
			*(*T)(unsafe.Add(p, 11*esz)) = v
			*(*T)(unsafe.Add(p, 12*esz)) = v
			*(*T)(unsafe.Add(p, 13*esz)) = v
			*(*T)(unsafe.Add(p, 14*esz)) = v
			*(*T)(unsafe.Add(p, 15*esz)) = v
			off += group
		}
		for off < chunkEnd {
			*(*T)(unsafe.Add(base, off)) = v
			off += esz
		}
		if canceled(inv.Stop) {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// scanWriteRate is scanWrite throttled toward mbs MB/s.
func scanWriteRate[T element](inv *Invocation, mbs uint64) Result {
	v := pattern[T]()
	base := inv.Region.Base()
	size := inv.Region.Size()
	esz := int(unsafe.Sizeof(v))
	group := esz * 16
	chunk := int(chunkGroups(uint64(size), uint64(group))) * group
	p := newPacer(uint64(chunk), mbs, inv.Stop)

	off := 0
	for off < size {
		chunkEnd := min(off+chunk, size)
		for off+group <= chunkEnd {
			q := unsafe.Add(base, off)
			*(*T)(q) = v
			*(*T)(unsafe.Add(q, esz)) = v
			*(*T)(unsafe.Add(q, 2*esz)) = v
			*(*T)(unsafe.Add(q, 3*esz)) = v
			*(*T)(unsafe.Add(q, 4*esz)) = v
			*(*T)(unsafe.Add(q, 5*esz)) = v
			*(*T)(unsafe.Add(q, 6*esz)) = v
			*(*T)(unsafe.Add(q, 7*esz)) = v
			*(*T)(unsafe.Add(q, 8*esz)) = v
			*(*T)(unsafe.Add(q, 9*esz)) = v
			*(*T)(unsafe.Add(q, 10*esz)) = v
			*(*T)(unsafe.Add(q, 11*esz)) = v
			*(*T)(unsafe.Add(q, 12*esz)) = v
			*(*T)(unsafe.Add(q, 13*esz)) = v
			*(*T)(unsafe.Add(q, 14*esz)) = v
			*(*T)(unsafe.Add(q, 15*esz)) = v
			off += group
		}
		for off < chunkEnd {
			*(*T)(unsafe.Add(base, off)) = v
			off += esz
		}
		if !p.pace() {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// fill sets every byte of b to pat using machine-width copies.
func fill(b []byte, pat byte) {
	if len(b) == 0 {
		return
	}
	b[0] = pat
	for i := 1; i < len(b); i *= 2 {
		copy(b[i:], b[:i])
	}
}

// memsetScan bulk-fills the whole region, in 1 MiB pieces so cancellation
// can land between them.
func memsetScan(inv *Invocation) Result {
	b := inv.Region.Bytes()
	off := 0
	for off < len(b) {
		end := min(off+maxSpeedChunk, len(b))
		fill(b[off:end], 0xaa)
		off = end
		if canceled(inv.Stop) {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// memsetScanRate bulk-fills the region in fixed 1 MiB chunks paced toward
// mbs MB/s. The residual tail is filled and paced like a full chunk.
func memsetScanRate(inv *Invocation, mbs uint64) Result {
	b := inv.Region.Bytes()
	chunk := min(len(b), mb)
	p := newPacer(uint64(chunk), mbs, inv.Stop)

	off := 0
	for off < len(b) {
		end := min(off+chunk, len(b))
		fill(b[off:end], 0xaa)
		off = end
		if !p.pace() {
			break
		}
	}
	return Result{KBytes: uint64(off) / 1024, Valid: true}
}

// registry is the fixed-order kernel catalog. The order is significant for
// reporting. Capability-gated kernels stay in the table on every platform;
// where the capability is absent they report invalid without touching
// memory, so the dispatcher can call any entry unconditionally.
var registry = []Info{
	{"write64stoq", DirWrite, writeStos64, writeStosRate64},
	{"write32stow", DirWrite, writeStos32, writeStosRate32},
	{"write16stod", DirWrite, writeStos16, writeStosRate16},
	{"write8stob", DirWrite, writeStos8, writeStosRate8},
	{"write128nt", DirWrite, writeNT128, writeNTRate128},
	{"write64nt", DirWrite, writeNT64, writeNTRate64},
	{"write32nt", DirWrite, writeNT32, writeNTRate32},
	{"write1024", DirWrite, scanWrite[vec1024], scanWriteRate[vec1024]},
	{"write512", DirWrite, scanWrite[vec512], scanWriteRate[vec512]},
	{"write256", DirWrite, scanWrite[vec256], scanWriteRate[vec256]},
	{"write128", DirWrite, scanWrite[vec128], scanWriteRate[vec128]},
	{"write64", DirWrite, scanWrite[uint64], scanWriteRate[uint64]},
	{"write32", DirWrite, scanWrite[uint32], scanWriteRate[uint32]},
	{"write16", DirWrite, scanWrite[uint16], scanWriteRate[uint16]},
	{"write8", DirWrite, scanWrite[uint8], scanWriteRate[uint8]},
	{"memset", DirWrite, memsetScan, memsetScanRate},
	{"read64pf", DirRead, readPrefetch64, readPrefetchRate64},
	{"read1024", DirRead, scanRead[vec1024], scanReadRate[vec1024]},
	{"read512", DirRead, scanRead[vec512], scanReadRate[vec512]},
	{"read256", DirRead, scanRead[vec256], scanReadRate[vec256]},
	{"read128", DirRead, scanRead[vec128], scanReadRate[vec128]},
	{"read64", DirRead, scanRead[uint64], scanReadRate[uint64]},
	{"read32", DirRead, scanRead[uint32], scanReadRate[uint32]},
	{"read16", DirRead, scanRead[uint16], scanReadRate[uint16]},
	{"read8", DirRead, scanRead[uint8], scanReadRate[uint8]},
}

// NumKernels returns the number of registry entries.
func NumKernels() int {
	return len(registry)
}

// KernelNames returns the registry names in reporting order.
func KernelNames() []string {
	names := make([]string, len(registry))
	for i := range registry {
		names[i] = registry[i].Name
	}
	return names
}

// dispatch invokes a kernel in max-speed mode iff its direction's target
// rate is unlimited, otherwise through the rate-limited entry point.
func dispatch(info *Info, inv *Invocation, cfg *MemRateConfig) Result {
	if info.Dir == DirRead {
		if cfg.ReadMBs == 0 {
			return info.Run(inv)
		}
		return info.RunRate(inv, cfg.ReadMBs)
	}
	if cfg.WriteMBs == 0 {
		return info.Run(inv)
	}
	return info.RunRate(inv, cfg.WriteMBs)
}
