package value

import "testing"

func TestArenaCopyBytesIndependentOfSource(t *testing.T) {
	a := NewArena()
	src := []byte("hello")
	got := a.CopyBytes(src)

	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}

	src[0] = 'X'
	if got[0] == 'X' {
		t.Fatal("arena copy should not alias the source slice")
	}
}

func TestArenaBytesInUseTracksAllocations(t *testing.T) {
	a := NewArena()
	a.CopyBytes(make([]byte, 10))
	a.CopyBytes(make([]byte, 20))

	if a.BytesInUse() != 30 {
		t.Fatalf("BytesInUse() = %d, want 30", a.BytesInUse())
	}
}

func TestArenaResetClearsUsage(t *testing.T) {
	a := NewArena()
	a.CopyBytes(make([]byte, 64))
	a.Reset()

	if a.BytesInUse() != 0 {
		t.Fatalf("BytesInUse() after Reset = %d, want 0", a.BytesInUse())
	}
}

func TestArenaGrowsPastInitialBuffer(t *testing.T) {
	a := NewArena()
	big := make([]byte, 3*2*1024*4+1024)
	got := a.CopyBytes(big)
	if len(got) != len(big) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(big))
	}
}
