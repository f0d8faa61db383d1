// Package mp4iotest builds atom byte streams for tests.
package mp4iotest

import (
	"github.com/ugparu/mp4meta/utils/bits/pio"
)

func BE16(v uint16) []byte {
	b := make([]byte, 2)
	pio.PutU16BE(b, v)
	return b
}

func BE32(v uint32) []byte {
	b := make([]byte, 4)
	pio.PutU32BE(b, v)
	return b
}

func BE64(v uint64) []byte {
	b := make([]byte, 8)
	pio.PutU64BE(b, v)
	return b
}

func Cat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

// Atom builds an atom with an 8-byte header.
func Atom(tag string, content ...[]byte) []byte {
	body := Cat(content...)
	return Cat(BE32(uint32(len(body)+8)), []byte(tag), body) //nolint:gosec
}

// ExtendedAtom builds an atom with a 16-byte header.
func ExtendedAtom(tag string, content ...[]byte) []byte {
	body := Cat(content...)
	return Cat(BE32(1), []byte(tag), BE64(uint64(len(body)+16)), body)
}

// FullAtom prefixes content with version and zero flags.
func FullAtom(tag string, version uint8, content ...[]byte) []byte {
	return Atom(tag, append([][]byte{{version, 0, 0, 0}}, content...)...)
}

func MovieHeaderV0(timescale, duration uint32) []byte {
	return FullAtom("mvhd", 0, BE32(0), BE32(0), BE32(timescale), BE32(duration), make([]byte, 80))
}

func MovieHeaderV1(timescale uint32, duration uint64) []byte {
	return FullAtom("mvhd", 1, BE64(0), BE64(0), BE32(timescale), BE64(duration), make([]byte, 80))
}

// MediaHeaderV0 builds an mdhd with language "eng".
func MediaHeaderV0(timescale, duration uint32) []byte {
	return FullAtom("mdhd", 0, BE32(0), BE32(0), BE32(timescale), BE32(duration), BE16(0x15c7), BE16(0))
}

func Handler(handler, name string) []byte {
	return FullAtom("hdlr", 0, BE32(0), []byte(handler), make([]byte, 12), []byte(name), []byte{0})
}

func ChunkOffsets(entries ...uint32) []byte {
	parts := [][]byte{BE32(uint32(len(entries)))} //nolint:gosec
	for _, e := range entries {
		parts = append(parts, BE32(e))
	}
	return FullAtom("stco", 0, parts...)
}

func ChunkOffsets64(entries ...uint64) []byte {
	parts := [][]byte{BE32(uint32(len(entries)))} //nolint:gosec
	for _, e := range entries {
		parts = append(parts, BE64(e))
	}
	return FullAtom("co64", 0, parts...)
}

// Data builds a data atom with a zero locale.
func Data(datatype uint32, payload []byte) []byte {
	return Atom("data", BE32(datatype), BE32(0), payload)
}

// TrackHeaderV0 builds a tkhd with unit volume and no dimensions.
func TrackHeaderV0(id, duration uint32) []byte {
	return FullAtom("tkhd", 0,
		BE32(0), BE32(0), BE32(id), BE32(0), BE32(duration),
		make([]byte, 12), BE16(0x0100), make([]byte, 2),
		make([]byte, 36), BE32(0), BE32(0),
	)
}

// Track builds a sound track whose sample table holds offsets.
func Track(id uint32, offsets []byte) []byte {
	return Atom("trak",
		TrackHeaderV0(id, 5000),
		Atom("mdia",
			MediaHeaderV0(44100, 441000),
			Handler("soun", "SoundHandler"),
			Atom("minf",
				Atom("smhd", make([]byte, 8)),
				Atom("stbl",
					Atom("stsd", make([]byte, 8)),
					offsets,
				),
			),
		),
	)
}

// ItemList holds a title, two covers, a freeform UTF-16 item and a tempo.
func ItemList() []byte {
	return Atom("ilst",
		Atom("\xa9nam", Data(1, []byte("Title"))),
		Atom("covr",
			Data(14, []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}),
			Data(13, []byte{0xff, 0xd8, 0xff, 0xe0}),
		),
		Atom("----",
			FullAtom("mean", 0, []byte("com.apple.iTunes")),
			FullAtom("name", 0, []byte("MOOD")),
			Data(2, []byte{0, 'o', 0, 'k'}),
		),
		Atom("tmpo", Data(21, []byte{0, 120})),
	)
}

func UserData(ilst []byte) []byte {
	return Atom("udta",
		FullAtom("meta", 0,
			Handler("mdir", ""),
			ilst,
			Atom("free", make([]byte, 16)),
		),
	)
}

// MediaPayload is the content of the mdat atom in File.
var MediaPayload = []byte("sample-one|sample-two")

// Layout builds ftyp, moov and mdat. The moov holds two tracks whose stco/co64 point
// at the two samples in mdat, plus udta when udta is not nil. With mdatFirst the mdat
// precedes the moov.
func Layout(udta []byte, mdatFirst bool) []byte {
	ftyp := Atom("ftyp", []byte("M4A "), BE32(0x200), []byte("M4A isommp42"))
	moov := func(first uint64) []byte {
		return Atom("moov",
			MovieHeaderV0(1000, 5000),
			Track(1, ChunkOffsets(uint32(first))), //nolint:gosec
			Track(2, ChunkOffsets64(first+11)),
			udta,
		)
	}
	mdat := Atom("mdat", MediaPayload)

	if mdatFirst {
		first := uint64(len(ftyp) + 8)
		return Cat(ftyp, mdat, moov(first))
	}
	first := uint64(len(ftyp) + len(moov(0)) + 8)
	return Cat(ftyp, moov(first), mdat)
}

// File is Layout with the default item list and the mdat after the moov.
func File() []byte {
	return Layout(UserData(ItemList()), false)
}
