package light

import "testing"

func TestResolve_KnownColors(t *testing.T) {
	tests := []struct {
		name string
		want HBS
	}{
		{"red", HBS{Hue: 64634, Bri: 56, Sat: 254}},
		{"orange", HBS{Hue: 4835, Bri: 56, Sat: 254}},
		{"yellow", HBS{Hue: 10152, Bri: 56, Sat: 254}},
		{"green", HBS{Hue: 29127, Bri: 56, Sat: 254}},
		{"blue", HBS{Hue: 44076, Bri: 56, Sat: 254}},
		{"purple", HBS{Hue: 49041, Bri: 56, Sat: 254}},
		{"white", HBS{Hue: 41479, Bri: 100, Sat: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.name)
			if !ok {
				t.Fatalf("Resolve(%q) not found", tt.name)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestResolve_Unknown(t *testing.T) {
	for _, name := range []string{"", "pink", "Red", " red"} {
		if _, ok := Resolve(name); ok {
			t.Errorf("Resolve(%q) should not be found", name)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 7 {
		t.Fatalf("Names() returned %d entries, want 7", len(names))
	}
	if names[0] != "blue" || names[6] != "yellow" {
		t.Errorf("Names() = %v, want sorted", names)
	}
}

func TestBodies(t *testing.T) {
	if got := PowerBody(true); got != `{"on":true}` {
		t.Errorf("PowerBody(true) = %s", got)
	}
	if got := PowerBody(false); got != `{"on":false}` {
		t.Errorf("PowerBody(false) = %s", got)
	}
	if got := AlertBody(); got != `{"alert": "lselect"}` {
		t.Errorf("AlertBody() = %s", got)
	}

	want := `{ "on": true, "bri": 254, "hue": 65280, "sat": 200 }`
	if got := (HBS{Hue: 65280, Bri: 254, Sat: 200}).Body(); got != want {
		t.Errorf("HBS.Body() = %s, want %s", got, want)
	}
}
