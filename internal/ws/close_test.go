package ws

import "testing"

func TestCloseDanceSecondInitiateIsNoOp(t *testing.T) {
	sent := 0
	cd := NewCloseDance(func(code uint16, reason string) error {
		sent++
		return nil
	}, nil)

	if err := cd.InitiateClose(CloseNormal, "a"); err != nil {
		t.Fatal(err)
	}
	if err := cd.InitiateClose(CloseNormal, "b"); err != nil {
		t.Fatal(err)
	}
	if sent != 1 {
		t.Fatalf("expected exactly 1 send, got %d", sent)
	}
}

func TestCloseDancePeerCloseEchoesWhenNotYetInitiated(t *testing.T) {
	sent := 0
	closed := false
	cd := NewCloseDance(func(code uint16, reason string) error {
		sent++
		return nil
	}, func() { closed = true })

	payload := EncodeClosePayload(CloseNormal, "peer-bye")
	if err := cd.OnPeerClose(payload); err != nil {
		t.Fatal(err)
	}
	if sent != 1 {
		t.Fatalf("expected echo send, got %d sends", sent)
	}
	if !closed {
		t.Fatal("expected onClosed callback to fire")
	}
	if !cd.Done() {
		t.Fatal("expected Done() true after peer close")
	}
}

func TestCloseDancePeerCloseAfterLocalInitiateDoesNotReecho(t *testing.T) {
	sent := 0
	cd := NewCloseDance(func(code uint16, reason string) error {
		sent++
		return nil
	}, nil)

	_ = cd.InitiateClose(CloseNormal, "local")
	_ = cd.OnPeerClose(EncodeClosePayload(CloseNormal, "peer"))

	if sent != 1 {
		t.Fatalf("expected only the local close to have sent, got %d sends", sent)
	}
}
