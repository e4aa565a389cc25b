package journal

import (
	"errors"
	"testing"
)

func TestSellLedgerAppendTrimsAndRequiresReason(t *testing.T) {
	var l SellLedger
	if err := l.Append(SellRecord{Date: " 2024-01-01 ", Price: "abc", Reason: " trim "}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if l[0].Date != "2024-01-01" || l[0].Reason != "trim" || l[0].Price != "abc" {
		t.Fatalf("record=%+v", l[0])
	}
	if err := l.Append(SellRecord{Reason: ""}); !IsValidation(err) {
		t.Fatalf("err=%v want validation", err)
	}
	if len(l) != 1 {
		t.Fatalf("len=%d want=1", len(l))
	}
}

func TestSellLedgerIndexErrors(t *testing.T) {
	l := SellLedger{{Reason: "a"}}
	if err := l.Update(1, SellRecord{Reason: "b"}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("update err=%v", err)
	}
	if err := l.RemoveAt(-1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove err=%v", err)
	}
	if err := l.RemoveAt(0); err != nil || len(l) != 0 {
		t.Fatalf("remove err=%v len=%d", err, len(l))
	}
}

func TestSellLedgerRemoveDoesNotAlias(t *testing.T) {
	orig := SellLedger{{Reason: "a"}, {Reason: "b"}, {Reason: "c"}}
	clone := orig.Clone()
	if err := clone.RemoveAt(0); err != nil {
		t.Fatalf("err=%v", err)
	}
	if orig[0].Reason != "a" || len(orig) != 3 {
		t.Fatalf("original mutated: %+v", orig)
	}
}

func TestDecodeSellRecords(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"null", `null`, 0, false},
		{"empty", ``, 0, false},
		{"array", `[{"reason":"x"},{"reason":"y"}]`, 2, false},
		{"encoded", `"[{\"reason\":\"x\"}]"`, 1, false},
		{"empty string", `""`, 0, false},
		{"object", `{"reason":"x"}`, 0, true},
		{"garbage string", `"oops"`, 0, true},
		{"broken array", `[{"reason":}]`, 0, true},
	}
	for _, tc := range cases {
		got, err := DecodeSellRecords([]byte(tc.raw))
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.name, err, tc.wantErr)
		}
		if got == nil || len(got) != tc.want {
			t.Fatalf("%s: got=%v want len %d", tc.name, got, tc.want)
		}
	}
}

func TestDecodeSellRecord(t *testing.T) {
	r, err := DecodeSellRecord([]byte(`{"date":"2024-01-01","price":160.5,"amount":"3","reason":"trim"}`))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if r.Price != "160.5" || r.Amount != "3" || r.Reason != "trim" {
		t.Fatalf("record=%+v", r)
	}
	if _, err := DecodeSellRecord([]byte(`[1]`)); !IsValidation(err) {
		t.Fatalf("err=%v want validation", err)
	}
}
