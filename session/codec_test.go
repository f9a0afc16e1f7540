package session

import (
	"errors"
	"testing"
)

func TestCodecRoundTripFidelity(t *testing.T) {
	sess := New("u-1")
	sess.AccessToken = &TokenRef{Token: "tok", Expiry: 1700000000}

	data, err := Encode(sess)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UserID != sess.UserID || got.AccessToken == nil ||
		got.AccessToken.Token != "tok" || got.AccessToken.Expiry != 1700000000 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCodecOmitsAbsentToken(t *testing.T) {
	data, err := Encode(New("u-1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AccessToken != nil {
		t.Fatalf("expected absent token to stay absent, got %+v", got.AccessToken)
	}
}

func TestCodecRejectsInvalid(t *testing.T) {
	if _, err := Encode(&Session{}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("encode empty user: expected ErrInvalidSession, got %v", err)
	}
	if _, err := Decode([]byte("{not json")); !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("decode garbage: expected ErrCorruptSession, got %v", err)
	}
	if _, err := Decode([]byte(`{"access_token":{"token":"t","expiry":1}}`)); !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("decode missing user_id: expected ErrCorruptSession, got %v", err)
	}
}
