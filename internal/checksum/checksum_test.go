package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Sum([]byte("abc")); got != want {
		t.Errorf("Sum = %s, want %s", got, want)
	}
}

func TestPartsBoundaries(t *testing.T) {
	a := Parts([]byte("ab"), []byte("c"))
	b := Parts([]byte("a"), []byte("bc"))
	if a == b {
		t.Error("moving bytes between parts should change the digest")
	}
	if a != Parts([]byte("ab"), []byte("c")) {
		t.Error("Parts is not deterministic")
	}
}
