package parser

import (
	"bytes"
	"encoding/binary"

	"github.com/marinekit/s57/internal/iso8211/iso8211test"
)

// Binary field builders for synthetic ENC datasets. Layouts follow
// S-57 Part 3 §7; all multi-byte integers are little-endian.

func fridField(rcid uint32, prim, grup byte, objl, rver uint16, ruin byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(100) // RCNM: feature record
	binary.Write(buf, binary.LittleEndian, rcid)
	buf.WriteByte(prim)
	buf.WriteByte(grup)
	binary.Write(buf, binary.LittleEndian, objl)
	binary.Write(buf, binary.LittleEndian, rver)
	buf.WriteByte(ruin)
	return buf.Bytes()
}

func foidField(agen uint16, fidn uint32, fids uint16) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, agen)
	binary.Write(buf, binary.LittleEndian, fidn)
	binary.Write(buf, binary.LittleEndian, fids)
	return buf.Bytes()
}

type attrPair struct {
	code  uint16
	value string
}

func attfField(pairs ...attrPair) []byte {
	buf := &bytes.Buffer{}
	for _, p := range pairs {
		binary.Write(buf, binary.LittleEndian, p.code)
		buf.WriteString(p.value)
		buf.WriteByte(0x1F)
	}
	return buf.Bytes()
}

func fsptField(refs ...[5]int) []byte {
	// Each ref: [rcnm, rcid, ornt, usag, mask].
	buf := &bytes.Buffer{}
	for _, r := range refs {
		buf.WriteByte(byte(r[0]))
		binary.Write(buf, binary.LittleEndian, uint32(r[1]))
		buf.WriteByte(byte(r[2]))
		buf.WriteByte(byte(r[3]))
		buf.WriteByte(byte(r[4]))
	}
	return buf.Bytes()
}

func vridField(rcnm byte, rcid uint32, rver uint16, ruin byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(rcnm)
	binary.Write(buf, binary.LittleEndian, rcid)
	binary.Write(buf, binary.LittleEndian, rver)
	buf.WriteByte(ruin)
	return buf.Bytes()
}

func sg2dField(coords ...[2]int32) []byte {
	buf := &bytes.Buffer{}
	for _, c := range coords {
		binary.Write(buf, binary.LittleEndian, c[0]) // X
		binary.Write(buf, binary.LittleEndian, c[1]) // Y
	}
	return buf.Bytes()
}

func sg3dField(coords ...[3]int32) []byte {
	buf := &bytes.Buffer{}
	for _, c := range coords {
		binary.Write(buf, binary.LittleEndian, c[0])
		binary.Write(buf, binary.LittleEndian, c[1])
		binary.Write(buf, binary.LittleEndian, c[2])
	}
	return buf.Bytes()
}

func vrptField(ptrs ...[6]int) []byte {
	// Each ptr: [rcnm, rcid, ornt, usag, topi, mask].
	buf := &bytes.Buffer{}
	for _, p := range ptrs {
		buf.WriteByte(byte(p[0]))
		binary.Write(buf, binary.LittleEndian, uint32(p[1]))
		buf.WriteByte(byte(p[2]))
		buf.WriteByte(byte(p[3]))
		buf.WriteByte(byte(p[4]))
		buf.WriteByte(byte(p[5]))
	}
	return buf.Bytes()
}

func dsidField(dsnm, edtn, updn, uadt, isdt string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(10) // RCNM: dataset general information
	binary.Write(buf, binary.LittleEndian, uint32(1))
	buf.WriteByte(1) // EXPP: new
	buf.WriteByte(5) // INTU: harbour
	for _, s := range []string{dsnm, edtn, updn} {
		buf.WriteString(s)
		buf.WriteByte(0x1F)
	}
	writeFixed := func(s string, n int) {
		b := make([]byte, n)
		copy(b, s)
		for i := len(s); i < n; i++ {
			b[i] = ' '
		}
		buf.Write(b)
	}
	writeFixed(uadt, 8)
	writeFixed(isdt, 8)
	writeFixed("03.1", 4)
	buf.WriteByte(1) // PRSP: ENC
	buf.WriteByte(0x1F)
	buf.WriteByte(0x1F)
	buf.WriteByte(1) // PROF: EN
	binary.Write(buf, binary.LittleEndian, uint16(550))
	buf.WriteString("test cell")
	buf.WriteByte(0x1F)
	return buf.Bytes()
}

func dspmField(comf, somf int32, cscl uint32) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(20) // RCNM: dataset parameters
	binary.Write(buf, binary.LittleEndian, uint32(1))
	buf.WriteByte(2) // HDAT: WGS-84
	buf.WriteByte(7) // VDAT
	buf.WriteByte(7) // SDAT
	binary.Write(buf, binary.LittleEndian, cscl)
	buf.WriteByte(1) // DUNI
	buf.WriteByte(1) // HUNI
	buf.WriteByte(1) // PUNI
	buf.WriteByte(1) // COUN: lat/lon
	binary.Write(buf, binary.LittleEndian, comf)
	binary.Write(buf, binary.LittleEndian, somf)
	return buf.Bytes()
}

// scaled converts degrees to raw units under the default COMF.
func scaled(deg float64) int32 {
	return int32(deg * float64(DefaultCOMF))
}

// baseCell assembles a small dataset: DSID + DSPM, an isolated node at
// (-70.5, 42.3), a DEPARE area made of one self-closing edge, and a
// LIGHTS point on the node.
func baseCell() []byte {
	dsid := iso8211test.Record(iso8211test.Field{Tag: "DSID", Data: dsidField("US5TEST1", "1", "0", "20260101", "20260101")})
	dspm := iso8211test.Record(iso8211test.Field{Tag: "DSPM", Data: dspmField(DefaultCOMF, DefaultSOMF, 25000)})

	node := iso8211test.Record(
		iso8211test.Field{Tag: "VRID", Data: vridField(110, 1, 1, 1)},
		iso8211test.Field{Tag: "SG2D", Data: sg2dField([2]int32{scaled(-70.5), scaled(42.3)})},
	)
	nodeA := iso8211test.Record(
		iso8211test.Field{Tag: "VRID", Data: vridField(120, 2, 1, 1)},
		iso8211test.Field{Tag: "SG2D", Data: sg2dField([2]int32{scaled(-70.0), scaled(42.0)})},
	)
	edge := iso8211test.Record(
		iso8211test.Field{Tag: "VRID", Data: vridField(130, 3, 1, 1)},
		iso8211test.Field{Tag: "VRPT", Data: vrptField(
			[6]int{120, 2, 1, 1, 1, 2},
			[6]int{120, 2, 1, 1, 2, 2},
		)},
		iso8211test.Field{Tag: "SG2D", Data: sg2dField(
			[2]int32{scaled(-70.1), scaled(42.0)},
			[2]int32{scaled(-70.1), scaled(42.1)},
			[2]int32{scaled(-70.0), scaled(42.1)},
		)},
	)

	depare := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(1, 3, 1, 42, 1, 1)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1001, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(
			attrPair{87, "0"},  // DRVAL1
			attrPair{88, "10"}, // DRVAL2
		)},
		iso8211test.Field{Tag: "FSPT", Data: fsptField([5]int{130, 3, 1, 1, 2})},
	)
	lights := iso8211test.Record(
		iso8211test.Field{Tag: "FRID", Data: fridField(2, 1, 2, 75, 1, 1)},
		iso8211test.Field{Tag: "FOID", Data: foidField(550, 1002, 1)},
		iso8211test.Field{Tag: "ATTF", Data: attfField(attrPair{75, "3"})}, // COLOUR
		iso8211test.Field{Tag: "FSPT", Data: fsptField([5]int{110, 1, 255, 255, 255})},
	)

	return iso8211test.File(dsid, dspm, node, nodeA, edge, depare, lights)
}

// updateCell assembles an ER-profile update buffer carrying the given
// UPDN and records.
func updateCell(updn string, records ...[]byte) []byte {
	dsid := iso8211test.Record(iso8211test.Field{Tag: "DSID", Data: dsidField("US5TEST1", "1", updn, "20260201", "20260201")})
	all := append([][]byte{dsid}, records...)
	return iso8211test.File(all...)
}
