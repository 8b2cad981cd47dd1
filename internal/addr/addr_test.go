package addr

import "testing"

func TestParse_Valid(t *testing.T) {
	got, err := Parse("0x9fB29AAc15b9A4B7F17c3385939b007540f4d791")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0x9fb29aac15b9a4b7f17c3385939b007540f4d791"
	if got != want {
		t.Errorf("expected canonical %s, got %s", want, got)
	}
}

func TestParse_AlreadyCanonical(t *testing.T) {
	in := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != in {
		t.Errorf("expected %s unchanged, got %s", in, got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"0x",
		"9fb29aac15b9a4b7f17c3385939b007540f4d791",    // missing prefix
		"0x9fb29aac15b9a4b7f17c3385939b007540f4d79",   // 39 digits
		"0x9fb29aac15b9a4b7f17c3385939b007540f4d7911", // 41 digits
		"0x9fb29aac15b9a4b7f17c3385939b007540f4d79g",  // non-hex
		"0X9fb29aac15b9a4b7f17c3385939b007540f4d791",  // wrong prefix case
	}
	for _, address := range tests {
		if _, err := Parse(address); err == nil {
			t.Errorf("expected error for address %q", address)
		}
	}
}
