package journal

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalizeInboundCamelWins(t *testing.T) {
	d, err := NormalizeInbound([]byte(`{"expected_return":"10%","expectedReturn":"20%","exit_plan":"old"}`))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := d.Text[FieldExpectedReturn]; got != "20%" {
		t.Fatalf("expected_return=%q want=20%%", got)
	}
	if got := d.Text[FieldExitPlan]; got != "old" {
		t.Fatalf("exit_plan=%q want=old", got)
	}
	if _, ok := d.Text[FieldRisks]; ok {
		t.Fatalf("absent field present in draft")
	}
}

func TestNormalizeInboundNullFallsThrough(t *testing.T) {
	d, _ := NormalizeInbound([]byte(`{"exitPlan":null,"exit_plan":"sell half"}`))
	if got := d.Text[FieldExitPlan]; got != "sell half" {
		t.Fatalf("exit_plan=%q", got)
	}
}

func TestNormalizeInboundKeepsNumbersAsText(t *testing.T) {
	d, _ := NormalizeInbound([]byte(`{"asset":"ETH","amount":0.50,"price":1e3}`))
	if d.Text[FieldAmount] != "0.50" || d.Text[FieldPrice] != "1e3" {
		t.Fatalf("amount=%q price=%q", d.Text[FieldAmount], d.Text[FieldPrice])
	}
}

func TestNormalizeInboundRejectsNonObject(t *testing.T) {
	for _, body := range []string{``, `[]`, `"x"`, `{bad`} {
		if _, err := NormalizeInbound([]byte(body)); !IsValidation(err) {
			t.Fatalf("body %q err=%v want validation", body, err)
		}
	}
}

func TestNormalizeInboundSellRecordsBothShapes(t *testing.T) {
	d, _ := NormalizeInbound([]byte(`{"sell_records":"[{\"date\":\"2024-01-01\",\"price\":160,\"amount\":\"5\",\"reason\":\"trim\"}]"}`))
	if !d.HasSellRecords || len(d.SellRecords) != 1 || d.SellRecords[0].Price != "160" {
		t.Fatalf("draft=%+v", d)
	}
	d, _ = NormalizeInbound([]byte(`{"sellRecords":[{"date":"2024-02-01","reason":"exit"}]}`))
	if len(d.SellRecords) != 1 || d.SellRecords[0].Reason != "exit" {
		t.Fatalf("draft=%+v", d)
	}
}

func TestNormalizeInboundRejectsMalformedSellRecords(t *testing.T) {
	for _, body := range []string{
		`{"sellRecords":"not a list"}`,
		`{"sell_records":"not json"}`,
		`{"sell_records":{"x":1}}`,
		`{"sell_records":[1,2]}`,
	} {
		_, err := NormalizeInbound([]byte(body))
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "sell_records" {
			t.Fatalf("body %s err=%v want sell_records validation", body, err)
		}
	}
}

func TestDenormalizeOutboundCarriesBothNames(t *testing.T) {
	e := Entry{
		ID:             3,
		Asset:          "AAPL",
		ExpectedReturn: "20%",
		ExitPlan:       "stop at 130",
		Archived:       true,
		ExitDate:       "2024-05-01",
		SellRecords:    SellLedger{{Date: "2024-04-01", Reason: "trim"}},
		ReviewHistory:  []ReviewLogEntry{{ID: 1, JournalID: 3, Content: "ok", Source: SourceAI}},
	}
	b, err := json.Marshal(DenormalizeOutbound(e))
	if err != nil {
		t.Fatalf("marshal err=%v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	pairs := [][2]string{
		{"expectedReturn", "expected_return"},
		{"exitPlan", "exit_plan"},
		{"exitDate", "exit_date"},
		{"aiReview", "ai_review"},
	}
	for _, p := range pairs {
		if m[p[0]] != m[p[1]] || m[p[0]] == nil {
			t.Fatalf("%s=%v %s=%v", p[0], m[p[0]], p[1], m[p[1]])
		}
	}
	if m["aiReview"] != "ok" {
		t.Fatalf("aiReview=%v", m["aiReview"])
	}
	logs, _ := m["ai_review_logs"].([]any)
	history, _ := m["reviewHistory"].([]any)
	if len(logs) != 1 || len(history) != 1 {
		t.Fatalf("logs=%v history=%v", logs, history)
	}
	first, _ := logs[0].(map[string]any)
	if first["review_content"] != "ok" || first["content"] != "ok" {
		t.Fatalf("log=%v", first)
	}
}

func TestDenormalizeOutboundEmptyCollections(t *testing.T) {
	b, _ := json.Marshal(DenormalizeOutbound(Entry{Asset: "X"}))
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for _, key := range []string{"sellRecords", "sell_records", "reviewHistory", "ai_review_logs"} {
		arr, ok := m[key].([]any)
		if !ok || len(arr) != 0 {
			t.Fatalf("%s=%v want []", key, m[key])
		}
	}
	if m["exitDate"] != nil {
		t.Fatalf("exitDate=%v want null", m["exitDate"])
	}
}

func TestRoundTripThroughBothConventions(t *testing.T) {
	d, _ := NormalizeInbound([]byte(`{"asset":"AAPL","expected_return":"20%","emotionalState":"calm"}`))
	v := DenormalizeOutbound(d.NewEntry())
	b, _ := json.Marshal(v)

	again, err := NormalizeInbound(b)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	e := again.NewEntry()
	if e.Asset != "AAPL" || e.ExpectedReturn != "20%" || e.EmotionalState != "calm" {
		t.Fatalf("entry=%+v", e)
	}
}

func TestDraftApply(t *testing.T) {
	e := Entry{ID: 5, Asset: "AAPL", Price: "150", Archived: true, ExitDate: "2024-05-01"}
	d, _ := NormalizeInbound([]byte(`{"price":"151","archived":false,"exitDate":"","id":5}`))
	warnings := d.Apply(&e)
	if e.Price != "151" || e.Asset != "AAPL" {
		t.Fatalf("entry=%+v", e)
	}
	if !e.Archived || e.ExitDate != "2024-05-01" {
		t.Fatalf("archived=%v exitDate=%q", e.Archived, e.ExitDate)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings=%v want archived and exit_date", warnings)
	}
}
