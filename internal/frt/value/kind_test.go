package value

import "testing"

func TestKindIsArray(t *testing.T) {
	cases := map[Kind]bool{
		KindInt8:        false,
		KindInt8Array:   true,
		KindString:      false,
		KindStringArray: true,
		KindData:        false,
		KindDataArray:   true,
	}
	for k, want := range cases {
		if got := k.IsArray(); got != want {
			t.Errorf("%v.IsArray() = %v, want %v", k, got, want)
		}
	}
}

func TestKindValid(t *testing.T) {
	if !KindInt32.Valid() {
		t.Fatal("KindInt32 should be valid")
	}
	if Kind('z').Valid() {
		t.Fatal("'z' should not be a valid kind")
	}
	if KindNone.Valid() {
		t.Fatal("KindNone should not be valid")
	}
}

func TestKindString(t *testing.T) {
	if KindInt32.String() != "i" {
		t.Fatalf("KindInt32.String() = %q, want %q", KindInt32.String(), "i")
	}
	if KindNone.String() != "none" {
		t.Fatalf("KindNone.String() = %q, want %q", KindNone.String(), "none")
	}
}
