package catalog

import "testing"

func TestGenerateOrderAndIdentity(t *testing.T) {
	def := DefaultDefinition()
	def.Count = 5
	def.ReadingURL = "https://example.org/%s/%03d.html"

	vols := Generate(def)
	if len(vols) != 5 {
		t.Fatalf("want 5 volumes, got %d", len(vols))
	}
	seen := map[string]bool{}
	for i, v := range vols {
		if v.Number != i+1 {
			t.Errorf("volume %d has number %d", i, v.Number)
		}
		if seen[v.ID] {
			t.Errorf("duplicate id %s", v.ID)
		}
		seen[v.ID] = true
	}
	if vols[0].ID != "V1" || vols[0].Label != "第1卷" {
		t.Errorf("first volume = %+v", vols[0])
	}
	if vols[2].ReadingURL != "https://example.org/T0279/003.html" {
		t.Errorf("reading url = %q", vols[2].ReadingURL)
	}
}

func TestGenerateIsFresh(t *testing.T) {
	def := DefaultDefinition()
	a := Generate(def)
	a[0].Title = "mutated"
	b := Generate(def)
	if b[0].Title == "mutated" {
		t.Fatal("Generate must not share state between calls")
	}
}

func TestGenerateEmpty(t *testing.T) {
	def := DefaultDefinition()
	def.Count = 0
	if got := Generate(def); len(got) != 0 {
		t.Fatalf("want empty catalog, got %d", len(got))
	}
}

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"V1":    "1",
		"v01":   "1",
		" 1 ":   "1",
		"001":   "1",
		"V0":    "0",
		"V12":   "12",
		"vol-a": "vol-a",
		"":      "",
	}
	for in, want := range cases {
		if got := NormalizeID(in); got != want {
			t.Errorf("NormalizeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFind(t *testing.T) {
	vols := Generate(Definition{Title: "T", Count: 3, IDPrefix: "V", LabelFormat: "%d"})
	if v, ok := Find(vols, "2"); !ok || v.ID != "V2" {
		t.Errorf("Find(2) = %+v, %v", v, ok)
	}
	if _, ok := Find(vols, "V9"); ok {
		t.Error("Find(V9) should fail")
	}
	if _, ok := Find(vols, ""); ok {
		t.Error("Find(empty) should fail")
	}
}
