package core

import "testing"

func TestParsePin(t *testing.T) {
	tests := []struct {
		name string
		want Pin
		ok   bool
	}{
		{"PA0", PinAt(0, 0), true},
		{"PA7", PinAt(0, 7), true},
		{"pb12", PinAt(1, 12), true},
		{"PF15", PinAt(5, 15), true},
		{"PA16", NoPin, false},
		{"PG0", NoPin, false},
		{"QA1", NoPin, false},
		{"PA", NoPin, false},
		{"PA1x", NoPin, false},
		{"PA100", NoPin, false},
		{"", NoPin, false},
	}

	for _, tt := range tests {
		got, ok := ParsePin(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePin(%q): expected (%d, %v), got (%d, %v)", tt.name, tt.want, tt.ok, got, ok)
		}
	}
}

func TestPinString(t *testing.T) {
	if s := PinAt(0, 7).String(); s != "PA7" {
		t.Errorf("Expected 'PA7', got '%s'", s)
	}
	if s := PinAt(1, 12).String(); s != "PB12" {
		t.Errorf("Expected 'PB12', got '%s'", s)
	}
	if s := NoPin.String(); s != "NoPin" {
		t.Errorf("Expected 'NoPin', got '%s'", s)
	}

	// Every valid pin survives a round trip through its name
	for port := uint8(0); port < NumPorts; port++ {
		for num := uint8(0); num < PinsPerPort; num++ {
			p := PinAt(port, num)
			back, ok := ParsePin(p.String())
			if !ok || back != p {
				t.Errorf("%s: round trip gave (%d, %v)", p, back, ok)
			}
			if p.Port() != port || p.Num() != num {
				t.Errorf("%s: expected port %d num %d, got %d %d", p, port, num, p.Port(), p.Num())
			}
		}
	}
}

func TestUtoaHtoa(t *testing.T) {
	utoa := map[uint32]string{
		0:          "0",
		7:          "7",
		72000000:   "72000000",
		4294967295: "4294967295",
	}
	for n, want := range utoa {
		if got := Utoa(n); got != want {
			t.Errorf("Utoa(%d): expected '%s', got '%s'", n, want, got)
		}
	}

	htoa := map[uint32]string{
		0:          "0x0",
		0xc:        "0xc",
		0x40013000: "0x40013000",
		0xffffffff: "0xffffffff",
	}
	for n, want := range htoa {
		if got := Htoa(n); got != want {
			t.Errorf("Htoa(%#x): expected '%s', got '%s'", n, want, got)
		}
	}

	if got := itoa(-42); got != "-42" {
		t.Errorf("Expected '-42', got '%s'", got)
	}
}
