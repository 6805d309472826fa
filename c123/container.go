package c123

import (
	"github.com/bartokon/ccsds123/internal/xdr"
)

// Container framing constants. The header is packed little-endian;
// version 3 is always written, version 2 remains readable.
const (
	ContainerVersion = 3

	headerSizeV2 = 30
	headerSizeV3 = 46

	versionV2 = 2
	versionV3 = 3

	flagReduced        = 0x0001
	flagColumnOriented = 0x0002
)

// Magic identifies a .c123 container.
var Magic = [4]byte{'C', '1', '2', '3'}

// Summary is the result of parsing a container header without decoding
// its payload.
type Summary struct {
	// Params carries the coding parameters recorded in the header. For
	// version 2 containers the fields absent from the legacy layout are
	// filled with the defaults that version's producer used.
	Params Params
	// PayloadBits is the exact number of meaningful bits in the payload.
	PayloadBits int
	// Version is the container version the header declared.
	Version uint16
}

// ReadSummary parses the header of a container and returns its
// parameters and payload size. The payload itself is not touched.
func ReadSummary(data []byte) (Summary, error) {
	return parseHeader(data)
}

// makeHeader serializes a version 3 header for the given parameters and
// payload bit count.
func makeHeader(p Params, payloadBits int) []byte {
	w := xdr.NewBufferWriter(headerSizeV3)
	w.WriteBytes(Magic[:])
	w.WriteUint16(versionV3)
	w.WriteUint16(uint16(p.NX))
	w.WriteUint16(uint16(p.NY))
	w.WriteUint16(uint16(p.NZ))
	w.WriteUint16(uint16(p.D))
	w.WriteUint16(uint16(p.P))
	w.WriteUint16(uint16(p.LocalSum))
	var flags uint16
	if p.Reduced {
		flags |= flagReduced
	}
	if p.ColumnOriented {
		flags |= flagColumnOriented
	}
	w.WriteUint16(flags)
	w.WriteInt16(int16(p.VMin))
	w.WriteInt16(int16(p.VMax))
	w.WriteInt16(int16(p.Omega))
	w.WriteInt16(int16(p.RegisterBits))
	w.WriteInt16(int16(p.TincLog))
	w.WriteUint16(uint16(p.Coder.UMax))
	w.WriteUint16(uint16(p.Coder.CounterSize))
	w.WriteUint16(uint16(p.Coder.InitialCountExponent))
	w.WriteUint16(uint16(p.Coder.KZPrime))
	w.WriteUint32(uint32(payloadBits))
	w.WriteUint32(0) // reserved
	return w.Bytes()
}

// parseHeader reads a v2 or v3 header. Version 2 containers carry only
// dimensions and the local-sum mode; the remaining fields take the fixed
// defaults embedded in that generation's producer.
func parseHeader(data []byte) (Summary, error) {
	if len(data) < headerSizeV2 {
		return Summary{}, ErrContainerTooSmall
	}
	r := xdr.NewReader(data)

	var magic [4]byte
	if err := r.ReadBytesInto(magic[:]); err != nil {
		return Summary{}, ErrContainerTooSmall
	}
	if magic != Magic {
		return Summary{}, ErrBadMagic
	}
	version, err := r.ReadUint16()
	if err != nil {
		return Summary{}, ErrContainerTooSmall
	}

	var out Summary
	out.Version = version

	nx, _ := r.ReadUint16()
	ny, _ := r.ReadUint16()
	nz, _ := r.ReadUint16()
	d, _ := r.ReadUint16()
	p, _ := r.ReadUint16()
	localSum, _ := r.ReadUint16()
	out.Params.NX = int(nx)
	out.Params.NY = int(ny)
	out.Params.NZ = int(nz)
	out.Params.D = int(d)
	out.Params.P = int(p)

	if version == versionV2 {
		if localSum != 0 {
			out.Params.LocalSum = LocalSumNeighborNarrow
		} else {
			out.Params.LocalSum = LocalSumNeighborWide
		}
		out.Params.VMin = -6
		out.Params.VMax = 9
		out.Params.Omega = 19
		out.Params.RegisterBits = 64
		out.Params.TincLog = 4
		out.Params.Coder = CoderParams{
			UMax:                 9,
			CounterSize:          8,
			InitialCountExponent: 6,
			KZPrime:              8,
		}
		payloadBits, err := r.ReadUint32()
		if err != nil {
			return Summary{}, ErrContainerTooSmall
		}
		out.PayloadBits = int(payloadBits)
		return out, nil
	}

	if version != versionV3 {
		return Summary{}, ErrUnsupportedVersion
	}
	if len(data) < headerSizeV3 {
		return Summary{}, ErrContainerTooSmall
	}

	out.Params.LocalSum = LocalSumMode(localSum)
	flags, _ := r.ReadUint16()
	out.Params.Reduced = flags&flagReduced != 0
	out.Params.ColumnOriented = flags&flagColumnOriented != 0
	vMin, _ := r.ReadInt16()
	vMax, _ := r.ReadInt16()
	omega, _ := r.ReadInt16()
	registerBits, _ := r.ReadInt16()
	tincLog, _ := r.ReadInt16()
	uMax, _ := r.ReadUint16()
	counterSize, _ := r.ReadUint16()
	initCountExp, _ := r.ReadUint16()
	kzPrime, _ := r.ReadUint16()
	payloadBits, err := r.ReadUint32()
	if err != nil {
		return Summary{}, ErrContainerTooSmall
	}
	out.Params.VMin = int(vMin)
	out.Params.VMax = int(vMax)
	out.Params.Omega = int(omega)
	out.Params.RegisterBits = int(registerBits)
	out.Params.TincLog = int(tincLog)
	out.Params.Coder = CoderParams{
		UMax:                 int(uMax),
		CounterSize:          int(counterSize),
		InitialCountExponent: int(initCountExp),
		KZPrime:              int(kzPrime),
	}
	out.PayloadBits = int(payloadBits)
	return out, nil
}

// headerSize returns the header length for a container version.
func headerSize(version uint16) int {
	if version == versionV2 {
		return headerSizeV2
	}
	return headerSizeV3
}
