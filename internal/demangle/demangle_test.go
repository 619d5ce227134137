package demangle

import "testing"

func TestDemangleSimpleNamespacedFunction(t *testing.T) {
	d := NewMSVCDemangler()
	got := d.Demangle("?foo@ns@@YAHXZ")
	want := "ns::foo"
	if got != want {
		t.Errorf("Demangle = %q, want %q", got, want)
	}
}

func TestDemangleSpecialNames(t *testing.T) {
	d := NewMSVCDemangler()

	tests := []struct {
		in   string
		want string
	}{
		{"??0@Foo@@QAE@XZ", "Foo::{ctor}"},
		{"??1@Foo@@QAE@XZ", "Foo::{dtor}"},
		{"??4@Foo@@QAE@XZ", "Foo::operator="},
	}

	for _, tt := range tests {
		if got := d.Demangle(tt.in); got != tt.want {
			t.Errorf("Demangle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDemanglePlainCName(t *testing.T) {
	d := NewMSVCDemangler()
	if got := d.Demangle("_foo@12"); got != "foo" {
		t.Errorf("Demangle(_foo@12) = %q, want %q", got, "foo")
	}
}
