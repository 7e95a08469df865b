package catalog

import "testing"

func TestList(t *testing.T) {
	want := []Category{
		{"Hair Services", "hair-services"},
		{"Skin Care", "skin-care"},
		{"Facials & Others", "facials-and-others"},
	}
	got := List()
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"all", "", true},
		{"ALL", "", true},
		{"Skin Care", "Skin Care", true},
		{"skin care", "Skin Care", true},
		{"skin-care", "Skin Care", true},
		{"facials-and-others", "Facials & Others", true},
		{"Facials & Others", "Facials & Others", true},
		{"nails", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Resolve(tc.in)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("Resolve(%q) = %q, %v", tc.in, got, ok)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !Valid("Hair Services") || Valid("hair services") || Valid("") {
		t.Fatal("Valid must match exact names only")
	}
}
