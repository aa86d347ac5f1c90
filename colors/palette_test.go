package colors

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

const testBlockTable = `# comment

0	0x00000000
1	0xFF7D7D7D		0xFF9A6A59
2	0xFF939393	grass
9	0x38FFFFFF	water
35	0xFFDDDDDD
35:14	0xFFB3312C
broken
99	nothex
100	0xFF224466	sparkly
`

const testBiomeTable = `0	0xFF8EB971	0xFF71A74D	0xFF3F76E4
1	0xFF91BD59	0xFF77AB2F	0xFF3F76E4
2	0xFF91BD59
`

func testPalette(t *testing.T, logs *bytes.Buffer) *Palette {
	t.Helper()
	l := log.New(logs, "", 0)
	b, err := LoadBlockColors(strings.NewReader(testBlockTable), "blocks", l)
	if err != nil {
		t.Fatal(err)
	}
	bi, err := LoadBiomeColors(strings.NewReader(testBiomeTable), "biomes", l)
	if err != nil {
		t.Fatal(err)
	}
	return &Palette{Blocks: b, Biomes: bi}
}

func TestLoadBlockColorsSkipsBrokenRows(t *testing.T) {
	logs := &bytes.Buffer{}
	p := testPalette(t, logs)
	if n := p.Blocks.Len(); n != 5 {
		t.Errorf("loaded %d blocks, want 5", n)
	}
	for _, id := range []uint16{99, 100} {
		if p.Blocks.Defined(id) {
			t.Errorf("broken row for %d was loaded", id)
		}
	}
	for _, want := range []string{"blocks:9", "blocks:10", "blocks:11", "biomes:3"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("no diagnostic mentioning %q in %q", want, logs.String())
		}
	}
}

func TestBlockSubColors(t *testing.T) {
	p := testPalette(t, &bytes.Buffer{})
	stone := p.Blocks.Get(1)
	if c, _, sub := stone.Color(1); !sub || c != 0xFF9A6A59 {
		t.Errorf("stone:1 = %08x (sub %v)", c, sub)
	}
	if c, _, sub := stone.Color(2); sub || c != 0xFF7D7D7D {
		t.Errorf("stone:2 = %08x (sub %v)", c, sub)
	}
	wool := p.Blocks.Get(35)
	if c, _, sub := wool.Color(14); !sub || c != 0xFFB3312C {
		t.Errorf("wool:14 = %08x (sub %v)", c, sub)
	}
	if c, _, _ := wool.Color(0); c != 0xFFDDDDDD {
		t.Errorf("wool base = %08x", c)
	}
}

func TestResolve(t *testing.T) {
	p := testPalette(t, &bytes.Buffer{})
	d := NewDefaults()
	cases := []struct {
		name  string
		id    uint16
		datum uint8
		biome int
		want  uint32
	}{
		{"plain block ignores biome", 1, 0, 0, 0xFF7D7D7D},
		{"grass takes biome grass color", 2, 0, 1, MultiplySolid(0xFF939393, 0xFF91BD59)},
		{"water keeps own alpha", 9, 0, 0, 0x383F76E4},
		{"sub color", 35, 14, 0, 0xFFB3312C},
	}
	for _, c := range cases {
		if got := p.Resolve(c.id, c.datum, c.biome, d); got != c.want {
			t.Errorf("%s: got %08x want %08x", c.name, got, c.want)
		}
	}
	if !d.Empty() {
		t.Errorf("known ids were recorded as defaulted: %+v", d)
	}
}

func TestResolveRecordsDefaultsOnce(t *testing.T) {
	p := testPalette(t, &bytes.Buffer{})
	d := NewDefaults()
	for i := 0; i < 10; i++ {
		if got := p.Resolve(4000, 0, 0, d); got != Magenta {
			t.Fatalf("unknown block resolved to %08x", got)
		}
		p.Resolve(2, 0, 300, d)
		p.Resolve(1, 7, 0, d)
	}
	if ids := d.SortedBlockIDs(); len(ids) != 1 || ids[0] != 4000 {
		t.Errorf("defaulted blocks %v", ids)
	}
	if ids := d.SortedBiomeIDs(); len(ids) != 1 || ids[0] != 300 {
		t.Errorf("defaulted biomes %v", ids)
	}
	if ids := d.SortedBlockIDDataValues(); len(ids) != 1 || ids[0] != 1|7<<16 {
		t.Errorf("defaulted block data values %v", ids)
	}
	if got := p.Resolve(2, 0, 300, nil); got != MultiplySolid(0xFF939393, Magenta) {
		t.Errorf("grass in unknown biome = %08x", got)
	}
}

func TestDefaultBiomeRow(t *testing.T) {
	bi, err := LoadBiomeColors(strings.NewReader("default\t0xFF010203\t0xFF040506\t0xFF070809\n"), "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	b := bi.Get(17)
	if !b.IsDefault || b.GrassColor != 0xFF010203 || b.Multiplier(InfluenceWater) != 0xFF070809 {
		t.Errorf("default biome %+v", b)
	}
	if bi.Get(-1) != b || bi.Get(256) != b {
		t.Error("out of range ids should use the default biome")
	}
}

func TestDefaultsMerge(t *testing.T) {
	a, b := NewDefaults(), NewDefaults()
	a.BlockIDs[1] = struct{}{}
	b.BlockIDs[1] = struct{}{}
	b.BlockIDs[2] = struct{}{}
	b.BiomeIDs[7] = struct{}{}
	a.Merge(b)
	a.Merge(nil)
	if len(a.BlockIDs) != 2 || len(a.BiomeIDs) != 1 {
		t.Errorf("merged %+v", a)
	}
}

func TestEmbeddedTables(t *testing.T) {
	logs := &bytes.Buffer{}
	p, err := LoadPalette("", "", log.New(logs, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 0 {
		t.Errorf("embedded tables produced diagnostics:\n%s", logs.String())
	}
	if p.Blocks.Len() < 150 || p.Biomes.Len() < 40 {
		t.Errorf("embedded tables too small: %d blocks %d biomes", p.Blocks.Len(), p.Biomes.Len())
	}
	if c := p.Resolve(0, 0, 1, nil); Alpha(c) != 0 {
		t.Errorf("air is not transparent: %08x", c)
	}
	if _, inf, _ := p.Blocks.Get(18).Color(0); inf != InfluenceFoliage {
		t.Errorf("leaves influence %v", inf)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadPalette(t.TempDir()+"/nope.txt", "", nil); err == nil {
		t.Error("missing table file did not fail")
	}
}

func TestBlockIDString(t *testing.T) {
	if s := BlockIDString(0x23 | 14<<16); s != "0x0023:14" {
		t.Errorf("got %q", s)
	}
	if s := BlockIDString(256); s != "0x0100" {
		t.Errorf("got %q", s)
	}
}
