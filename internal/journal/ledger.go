package journal

import (
	"encoding/json"
	"errors"
	"strings"
)

// SellLedger is the ordered list of exits for one journal. Order is insertion
// order; records are never sorted by date.
type SellLedger []SellRecord

func (l *SellLedger) Append(r SellRecord) error {
	r = r.trimmed()
	if r.Reason == "" {
		return Required("reason")
	}
	*l = append(*l, r)
	return nil
}

func (l *SellLedger) Update(index int, r SellRecord) error {
	if index < 0 || index >= len(*l) {
		return ErrIndexOutOfRange
	}
	r = r.trimmed()
	if r.Reason == "" {
		return Required("reason")
	}
	(*l)[index] = r
	return nil
}

func (l *SellLedger) RemoveAt(index int) error {
	if index < 0 || index >= len(*l) {
		return ErrIndexOutOfRange
	}
	out := make(SellLedger, 0, len(*l)-1)
	out = append(out, (*l)[:index]...)
	out = append(out, (*l)[index+1:]...)
	*l = out
	return nil
}

func (l SellLedger) Clone() SellLedger {
	out := make(SellLedger, len(l))
	copy(out, l)
	return out
}

// MarshalJSON keeps an empty ledger as [] rather than null.
func (l SellLedger) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]SellRecord(l))
}

func (r SellRecord) trimmed() SellRecord {
	return SellRecord{
		Date:   strings.TrimSpace(r.Date),
		Price:  strings.TrimSpace(r.Price),
		Amount: strings.TrimSpace(r.Amount),
		Reason: strings.TrimSpace(r.Reason),
	}
}

var errSellRecordsShape = errors.New("sell_records is neither a list nor an encoded list")

// DecodeSellRecords accepts a JSON array of records or a JSON string holding
// such an array. On failure it returns an empty ledger and the decode error so
// the caller can flag the read without failing it.
func DecodeSellRecords(raw json.RawMessage) (SellLedger, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return SellLedger{}, nil
	}
	switch raw[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return SellLedger{}, err
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return SellLedger{}, nil
		}
		if !strings.HasPrefix(encoded, "[") {
			return SellLedger{}, errSellRecordsShape
		}
		return DecodeSellRecords(json.RawMessage(encoded))
	case '[':
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return SellLedger{}, err
		}
		out := make(SellLedger, 0, len(items))
		for _, it := range items {
			out = append(out, SellRecord{
				Date:   scalarText(it["date"]),
				Price:  scalarText(it["price"]),
				Amount: scalarText(it["amount"]),
				Reason: scalarText(it["reason"]),
			})
		}
		return out, nil
	default:
		return SellLedger{}, errSellRecordsShape
	}
}

// DecodeSellRecord reads one record object. Values may be strings or numbers
// and are kept as text.
func DecodeSellRecord(raw []byte) (SellRecord, error) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || raw[0] != '{' {
		return SellRecord{}, &ValidationError{Field: "sell_record", Reason: "must be a JSON object"}
	}
	var it map[string]json.RawMessage
	if err := json.Unmarshal(raw, &it); err != nil {
		return SellRecord{}, &ValidationError{Field: "sell_record", Reason: "malformed JSON: " + err.Error()}
	}
	return SellRecord{
		Date:   scalarText(it["date"]),
		Price:  scalarText(it["price"]),
		Amount: scalarText(it["amount"]),
		Reason: scalarText(it["reason"]),
	}, nil
}

// EncodeSellRecords is the persisted form of a ledger.
func EncodeSellRecords(l SellLedger) []byte {
	b, err := json.Marshal(l)
	if err != nil {
		return []byte("[]")
	}
	return b
}
