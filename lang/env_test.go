package lang

import "testing"

func TestEnv_BindAndLookup(t *testing.T) {
	env := NewEnv()

	if replaced := env.Bind(Ident("x"), Num(1)); replaced {
		t.Error("first bind reported a replacement")
	}

	if replaced := env.Bind(Ident("x"), Num(2)); !replaced {
		t.Error("rebind did not report a replacement")
	}

	value, ok := env.Lookup(Ident("x"))
	if !ok {
		t.Fatal("lookup failed for bound key")
	}

	if !Equal(value, Num(2)) {
		t.Errorf("expected 2, got %s", value)
	}

	if _, ok := env.Lookup(Ident("y")); ok {
		t.Error("lookup succeeded for unbound key")
	}
}

func TestEnv_KeysAreStructural(t *testing.T) {
	env := NewEnv()
	env.Bind(List{Num(1), Str("a")}, Ident("found"))

	// A distinct but structurally equal node reaches the same binding.
	value, ok := env.Lookup(List{Num(1), Str("a")})
	if !ok {
		t.Fatal("structural lookup failed")
	}

	if !Equal(value, Ident("found")) {
		t.Errorf("expected found, got %s", value)
	}

	// Same text, different kind: no binding.
	if _, ok := env.Lookup(Str("a")); ok {
		t.Error("lookup crossed node kinds")
	}
}

func TestEnv_ExtendShadowsWithoutMutation(t *testing.T) {
	root := NewEnv()
	root.Bind(Ident("x"), Num(1))
	root.Bind(Ident("y"), Num(2))

	frame := root.Extend(Params{"x"}, []Node{Num(10)})

	value, ok := frame.Lookup(Ident("x"))
	if !ok || !Equal(value, Num(10)) {
		t.Errorf("expected shadowed value 10, got %s", value)
	}

	value, ok = frame.Lookup(Ident("y"))
	if !ok || !Equal(value, Num(2)) {
		t.Errorf("expected inherited value 2, got %s", value)
	}

	value, ok = root.Lookup(Ident("x"))
	if !ok || !Equal(value, Num(1)) {
		t.Errorf("extension mutated the parent: got %s", value)
	}

	if root.Len() != 2 || frame.Len() != 1 {
		t.Errorf("unexpected frame sizes: root=%d frame=%d",
			root.Len(), frame.Len())
	}
}

func TestEnv_Bindings(t *testing.T) {
	env := NewEnv()
	env.Bind(Ident("a"), Num(1))
	env.Bind(Num(2), Str("two"))

	seen := 0

	for key, value := range env.Bindings() {
		seen++

		bound, ok := env.Lookup(key)
		if !ok || !Equal(bound, value) {
			t.Errorf("binding %s mismatches lookup", key)
		}
	}

	if seen != 2 {
		t.Errorf("expected 2 bindings, got %d", seen)
	}
}
