package ice

import "sync"

// Modulus polynomials for the S-boxes, indexed by [slot][row].
var sMod = [4][4]uint32{
	{333, 313, 505, 369},
	{379, 375, 319, 391},
	{361, 445, 451, 397},
	{397, 425, 395, 505},
}

// XOR values for the S-boxes, indexed by [slot][row].
var sXor = [4][4]uint32{
	{0x83, 0x85, 0x9b, 0xcd},
	{0xcc, 0xa7, 0xad, 0x41},
	{0x4b, 0x2e, 0xd4, 0x33},
	{0xea, 0xcb, 0x2e, 0x04},
}

// sboxTable holds the combined S-box and P-box lookups for the four slots.
type sboxTable [4][1024]uint32

// sboxes returns the process-wide table, building it on first use.
// Callers must not modify the returned table.
var sboxes = sync.OnceValue(buildSBoxes)

func buildSBoxes() *sboxTable {
	var t sboxTable
	for i := 0; i < 1024; i++ {
		col := uint32(i>>1) & 0xFF
		row := (i & 0x1) | ((i & 0x200) >> 8)

		for s := 0; s < 4; s++ {
			x := gfExp7(col^sXor[s][row], sMod[s][row]) << ((3 - s) * 8)
			t[s][i] = perm32(x)
		}
	}
	return &t
}
