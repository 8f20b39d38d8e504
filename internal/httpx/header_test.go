package httpx

import "testing"

func TestHeaderCanonicalAndAddSetGet(t *testing.T) {
	h := NewHeader()
	h.Add("content-type", "text/plain")
	h.Add("Content-Type", "charset=utf-8")
	h.Add("HOST", "example.com")
	h.Set("x-powered-by", "go")

	// Keys must be stored/accessible in canonical form.
	if got := h.Get("CONTENT-TYPE"); got != "text/plain" { // FIRST value only
		t.Fatalf("Get(Content-Type) = %q, want %q", got, "text/plain")
	}
	if got := h.Get("host"); got != "example.com" {
		t.Fatalf("Get(Host) = %q", got)
	}
	// Set replaces previous values.
	h.Set("X-Powered-By", "rust? no, go")
	if got := h.Get("x-powered-by"); got != "rust? no, go" {
		t.Fatalf("Get after Set = %q", got)
	}
}

func TestHeaderValuesAndDel(t *testing.T) {
	h := NewHeader()
	h.Add("Accept", "text/html")
	h.Add("ACCEPT", "application/json")

	vals := h.Values("accept")
	if len(vals) != 2 || vals[0] != "text/html" || vals[1] != "application/json" {
		t.Fatalf("Values = %#v", vals)
	}

	h.Del("ACCEPT")
	if got := len(h.Values("Accept")); got != 0 {
		t.Fatalf("Del failed, still %d values", got)
	}
	if h.Has("Accept") {
		t.Fatal("Has should report false after Del")
	}
}

func TestHeaderOrderPreserved(t *testing.T) {
	h := NewHeader()
	h.Add("Host", "example.com")
	h.Add("Accept", "text/html")
	h.Add("Content-Type", "text/plain")
	h.Add("Accept", "application/json") // second value, same key

	want := []string{"Host", "Accept", "Content-Type"}
	if got := h.Keys(); len(got) != len(want) {
		t.Fatalf("Keys() = %#v, want %#v", got, want)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Keys()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	}

	var order []string
	h.Range(func(k, v string) { order = append(order, k+"="+v) })
	wantOrder := []string{"Host=example.com", "Accept=text/html", "Accept=application/json", "Content-Type=text/plain"}
	if len(order) != len(wantOrder) {
		t.Fatalf("Range order = %#v, want %#v", order, wantOrder)
	}
	for i := range wantOrder {
		if order[i] != wantOrder[i] {
			t.Fatalf("Range()[%d] = %q, want %q", i, order[i], wantOrder[i])
		}
	}
}

func TestHeaderValidationLimits(t *testing.T) {
	h := NewHeader()
	// Prepare many fields quickly.
	for i := 0; i < 5; i++ {
		h.Add("X-K"+string(rune('A'+i)), "v")
	}
	lim := HeaderLimits{
		MaxFields:           4,
		MaxKeyBytes:         32,
		MaxValueBytes:       8,
		MaxTotalValuesBytes: 32,
	}
	if err := ValidateHeader(h, lim); err == nil {
		t.Fatal("expected error for too many fields")
	}

	// Invalid name (space) should fail.
	h = NewHeader()
	h.Add("Bad Name", "v")
	if err := ValidateHeader(h, lim); err == nil {
		t.Fatal("expected invalid field-name error")
	}

	// Invalid value (control characters other than HTAB).
	h = NewHeader()
	h.Add("X-K", "okbell") // \a is control char → invalid
	if err := ValidateHeader(h, lim); err == nil {
		t.Fatal("expected invalid value error")
	}

	// Value too long.
	h = NewHeader()
	h.Add("X-K", "123456789") // 9 bytes > MaxValueBytes(8)
	if err := ValidateHeader(h, lim); err == nil {
		t.Fatal("expected value too long error")
	}

	// Sum of values too large.
	h = NewHeader()
	h.Add("A", "12345678")
	h.Add("B", "12345678")
	h.Add("C", "1")
	// total = 8+8+1 = 17 > MaxTotalValuesBytes(16) when set so:
	lim.MaxTotalValuesBytes = 16
	if err := ValidateHeader(h, lim); err == nil {
		t.Fatal("expected total values size error")
	}

	// Valid case.
	h = NewHeader()
	h.Add("Content-Type", "text/plain")
	h.Add("Host", "ex.com")
	lim = HeaderLimits{MaxFields: 8, MaxKeyBytes: 64, MaxValueBytes: 64, MaxTotalValuesBytes: 0}
	if err := ValidateHeader(h, lim); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestCanonicalHeaderKeyBehavior(t *testing.T) {
	// Your CanonicalHeaderKey must match stdlib's semantics.
	cases := map[string]string{
		"content-type": "Content-Type",
		"HOST":         "Host",
		"etag":         "Etag",
		"x-custom-id":  "X-Custom-Id",
		"r":            "R",
		"":             "",
	}
	for in, want := range cases {
		if got := CanonicalHeaderKey(in); got != want {
			t.Fatalf("CanonicalHeaderKey(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestHeaderClone(t *testing.T) {
	h := NewHeader()
	h.Add("Accept", "text/html")
	c := h.Clone()
	c.Add("Accept", "application/json")

	if len(h.Values("Accept")) != 1 {
		t.Fatalf("original mutated by clone: %#v", h.Values("Accept"))
	}
	if len(c.Values("Accept")) != 2 {
		t.Fatalf("clone missing appended value: %#v", c.Values("Accept"))
	}
}
