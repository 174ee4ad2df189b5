package vmm

import "testing"

func TestDirectoryAndTableIndex(t *testing.T) {
	specs := []struct {
		addr        uint32
		dirIdx      uint32
		tableIdx    uint32
		pageOffset_ uint32
	}{
		{0x00000000, 0, 0, 0},
		{0x00000FFF, 0, 0, 0xFFF},
		{0x00001000, 0, 1, 0},
		{0x00400000, 1, 0, 0},
		{0x003FF000, 0, 1023, 0},
		{0xFFFFFFFF, 1023, 1023, 0xFFF},
	}

	for i, s := range specs {
		if got := directoryIndex(s.addr); got != s.dirIdx {
			t.Errorf("[spec %d] directoryIndex(%#x) = %d, want %d", i, s.addr, got, s.dirIdx)
		}
		if got := tableIndex(s.addr); got != s.tableIdx {
			t.Errorf("[spec %d] tableIndex(%#x) = %d, want %d", i, s.addr, got, s.tableIdx)
		}
		if got := pageOffset(s.addr); got != s.pageOffset_ {
			t.Errorf("[spec %d] pageOffset(%#x) = %#x, want %#x", i, s.addr, got, s.pageOffset_)
		}
	}
}

func TestRecursiveMappingAddresses(t *testing.T) {
	if got := PDEAddress(0); got != 0xFFFFF000 {
		t.Errorf("PDEAddress(0) = %#x, want 0xFFFFF000", got)
	}
	if got := PDEAddress(5); got != 0xFFFFF000+4*5 {
		t.Errorf("PDEAddress(5) = %#x, want %#x", got, 0xFFFFF000+4*5)
	}
	if got := PTEAddress(0, 0); got != 0xFFC00000 {
		t.Errorf("PTEAddress(0,0) = %#x, want 0xFFC00000", got)
	}
	if got := PTEAddress(2, 3); got != 0xFFC00000+4096*2+4*3 {
		t.Errorf("PTEAddress(2,3) = %#x, want %#x", got, 0xFFC00000+4096*2+4*3)
	}
}
