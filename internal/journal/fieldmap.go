package journal

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Field is the canonical (snake_case) name of a descriptive text field.
type Field string

const (
	FieldDate             Field = "date"
	FieldAsset            Field = "asset"
	FieldAmount           Field = "amount"
	FieldPrice            Field = "price"
	FieldStrategy         Field = "strategy"
	FieldReasons          Field = "reasons"
	FieldRisks            Field = "risks"
	FieldExpectedReturn   Field = "expected_return"
	FieldExitPlan         Field = "exit_plan"
	FieldMarketConditions Field = "market_conditions"
	FieldEmotionalState   Field = "emotional_state"
)

// Names of the non-text fields.
const (
	keyArchived       = "archived"
	keyExitDate       = "exit_date"
	keyExitDateCamel  = "exitDate"
	keySellRecords    = "sell_records"
	keySellRecordsCam = "sellRecords"
	keyAIReview       = "ai_review"
	keyAIReviewCamel  = "aiReview"
)

type fieldName struct {
	Field Field
	Camel string
}

// Wire is the snake_case name; Camel is the display name. Identical for
// single-word fields.
func (n fieldName) Wire() string { return string(n.Field) }

var textFields = []fieldName{
	{FieldDate, "date"},
	{FieldAsset, "asset"},
	{FieldAmount, "amount"},
	{FieldPrice, "price"},
	{FieldStrategy, "strategy"},
	{FieldReasons, "reasons"},
	{FieldRisks, "risks"},
	{FieldExpectedReturn, "expectedReturn"},
	{FieldExitPlan, "exitPlan"},
	{FieldMarketConditions, "marketConditions"},
	{FieldEmotionalState, "emotionalState"},
}

// Draft is a normalized inbound record. Only fields the caller actually sent
// are present, so a Draft can be merged onto a stored entry.
type Draft struct {
	Text map[Field]string

	Archived     *bool
	ExitDate     *string
	LegacyReview *string

	SellRecords    SellLedger
	HasSellRecords bool

	// ID is whatever id the caller sent; journals are always numbered by the store.
	ID *string

	Warnings []string
}

// NormalizeInbound decodes a JSON object that may use either naming
// convention. When both names of a field are present, the camelCase value
// wins: that is the name editing clients write, while the snake_case value is
// usually an echo of the stored record.
func NormalizeInbound(raw []byte) (Draft, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Draft{}, &ValidationError{Reason: "body must be a JSON object"}
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return Draft{}, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}
	return NormalizeInboundMap(m)
}

// NormalizeInboundMap is NormalizeInbound over an already split object. A
// sell_records value that is not a list (or an encoded list) is rejected so a
// write can never replace the stored ledger with an empty one by accident.
func NormalizeInboundMap(m map[string]json.RawMessage) (Draft, error) {
	d := Draft{Text: map[Field]string{}}
	for _, n := range textFields {
		if v, ok := lookup(m, n.Camel, n.Wire()); ok {
			d.Text[n.Field] = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(m, keyExitDateCamel, keyExitDate); ok {
		v = strings.TrimSpace(v)
		d.ExitDate = &v
	}
	if v, ok := lookup(m, keyAIReviewCamel, keyAIReview); ok {
		d.LegacyReview = &v
	}
	if raw, ok := m[keyArchived]; ok && !isNull(raw) {
		if b, ok := parseBool(raw); ok {
			d.Archived = &b
		} else {
			d.Warnings = append(d.Warnings, "archived: not a boolean, ignored")
		}
	}
	if raw, ok := lookupRaw(m, keySellRecordsCam, keySellRecords); ok {
		ledger, err := DecodeSellRecords(raw)
		if err != nil {
			return Draft{}, &ValidationError{Field: keySellRecords, Reason: err.Error()}
		}
		d.SellRecords = ledger
		d.HasSellRecords = true
	}
	if raw, ok := m["id"]; ok && !isNull(raw) {
		v := scalarText(raw)
		d.ID = &v
	}
	return d, nil
}

// ApplyText merges the descriptive fields present in d onto e.
func (d Draft) ApplyText(e *Entry) {
	for f, v := range d.Text {
		if p := e.text(f); p != nil {
			*p = v
		}
	}
}

// Apply merges d onto a stored entry for a full-record replace: fields the
// caller sent overwrite, absent fields keep their stored value. Identity,
// creation time, review history and the archived flag are left alone; exit_date
// is only accepted on an archived entry. Ignored fields are reported as warnings.
func (d Draft) Apply(e *Entry) []string {
	var warnings []string
	d.ApplyText(e)
	if d.HasSellRecords {
		e.SellRecords = d.SellRecords.Clone()
	}
	if d.Archived != nil && *d.Archived != e.Archived {
		warnings = append(warnings, "archived: use the archive/unarchive operations, ignored")
	}
	if d.ExitDate != nil {
		switch {
		case !e.Archived:
			if *d.ExitDate != "" {
				warnings = append(warnings, "exit_date: journal is not archived, ignored")
			}
		case *d.ExitDate == "":
			warnings = append(warnings, "exit_date: cannot clear the exit date of an archived journal, ignored")
		default:
			e.ExitDate = *d.ExitDate
		}
	}
	if d.ID != nil && *d.ID != strconv.FormatUint(e.ID, 10) {
		warnings = append(warnings, "id: identity is fixed, ignored")
	}
	warnings = append(warnings, d.Warnings...)
	return warnings
}

// NewEntry builds a fresh entry from d. Lifecycle fields start at their defaults.
func (d Draft) NewEntry() Entry {
	var e Entry
	d.ApplyText(&e)
	if d.HasSellRecords {
		e.SellRecords = d.SellRecords.Clone()
	} else {
		e.SellRecords = SellLedger{}
	}
	if d.LegacyReview != nil {
		e.LegacyReview = *d.LegacyReview
	}
	e.ReviewHistory = []ReviewLogEntry{}
	e.Warnings = append(e.Warnings, d.Warnings...)
	return e
}

func lookup(m map[string]json.RawMessage, names ...string) (string, bool) {
	raw, ok := lookupRaw(m, names...)
	if !ok {
		return "", false
	}
	return scalarText(raw), true
}

func lookupRaw(m map[string]json.RawMessage, names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		raw, ok := m[name]
		if !ok || isNull(raw) {
			continue
		}
		return raw, true
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// scalarText keeps values as opaque text: strings are unquoted, numbers and
// booleans keep their literal spelling.
func scalarText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if s[0] == '"' {
		var out string
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
	}
	return s
}

func parseBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	s := scalarText(raw)
	if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return v, true
	}
	return false, false
}

// View is the outbound form of an entry. It carries every renamed field under
// both names so older snake_case readers and newer camelCase readers agree.
type View struct {
	ID uint64 `json:"id"`

	Date     string `json:"date"`
	Asset    string `json:"asset"`
	Amount   string `json:"amount"`
	Price    string `json:"price"`
	Strategy string `json:"strategy"`
	Reasons  string `json:"reasons"`
	Risks    string `json:"risks"`

	ExpectedReturn       string `json:"expectedReturn"`
	ExpectedReturnWire   string `json:"expected_return"`
	ExitPlan             string `json:"exitPlan"`
	ExitPlanWire         string `json:"exit_plan"`
	MarketConditions     string `json:"marketConditions"`
	MarketConditionsWire string `json:"market_conditions"`
	EmotionalState       string `json:"emotionalState"`
	EmotionalStateWire   string `json:"emotional_state"`
	AIReview             string `json:"aiReview"`
	AIReviewWire         string `json:"ai_review"`

	Archived     bool    `json:"archived"`
	ExitDate     *string `json:"exitDate"`
	ExitDateWire *string `json:"exit_date"`

	SellRecords     SellLedger `json:"sellRecords"`
	SellRecordsWire SellLedger `json:"sell_records"`

	ReviewHistory     []ReviewView `json:"reviewHistory"`
	ReviewHistoryWire []ReviewView `json:"ai_review_logs"`

	CreatedAt     time.Time `json:"createdAt"`
	CreatedAtWire time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"`
	UpdatedAtWire time.Time `json:"updated_at"`

	Warnings []string `json:"warnings,omitempty"`
}

type ReviewView struct {
	ID            uint64    `json:"id"`
	JournalID     uint64    `json:"journalId"`
	JournalIDWire uint64    `json:"journal_id"`
	Content       string    `json:"content"`
	ReviewContent string    `json:"review_content"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedAtWire time.Time `json:"created_at"`
	ContentHTML   string    `json:"contentHtml,omitempty"`
}

// DenormalizeOutbound renders e with both naming conventions populated.
func DenormalizeOutbound(e Entry) View {
	history := e.History()
	reviews := make([]ReviewView, 0, len(history))
	for _, r := range history {
		reviews = append(reviews, NewReviewView(r))
	}
	ledger := e.SellRecords.Clone()
	latest := e.LatestReview()

	v := View{
		ID:       e.ID,
		Date:     e.Date,
		Asset:    e.Asset,
		Amount:   e.Amount,
		Price:    e.Price,
		Strategy: e.Strategy,
		Reasons:  e.Reasons,
		Risks:    e.Risks,

		ExpectedReturn:       e.ExpectedReturn,
		ExpectedReturnWire:   e.ExpectedReturn,
		ExitPlan:             e.ExitPlan,
		ExitPlanWire:         e.ExitPlan,
		MarketConditions:     e.MarketConditions,
		MarketConditionsWire: e.MarketConditions,
		EmotionalState:       e.EmotionalState,
		EmotionalStateWire:   e.EmotionalState,
		AIReview:             latest,
		AIReviewWire:         latest,

		Archived: e.Archived,

		SellRecords:     ledger,
		SellRecordsWire: ledger,

		ReviewHistory:     reviews,
		ReviewHistoryWire: reviews,

		CreatedAt:     e.CreatedAt,
		CreatedAtWire: e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		UpdatedAtWire: e.UpdatedAt,

		Warnings: e.Warnings,
	}
	if e.Archived && e.ExitDate != "" {
		exit := e.ExitDate
		v.ExitDate = &exit
		v.ExitDateWire = &exit
	}
	return v
}

func NewReviewView(r ReviewLogEntry) ReviewView {
	return ReviewView{
		ID:            r.ID,
		JournalID:     r.JournalID,
		JournalIDWire: r.JournalID,
		Content:       r.Content,
		ReviewContent: r.Content,
		Source:        r.Source,
		CreatedAt:     r.CreatedAt,
		CreatedAtWire: r.CreatedAt,
	}
}

// Text returns the value of a descriptive field, read through either name.
func (v View) Text(name string) (string, bool) {
	for _, n := range textFields {
		if name != n.Camel && name != n.Wire() {
			continue
		}
		switch n.Field {
		case FieldDate:
			return v.Date, true
		case FieldAsset:
			return v.Asset, true
		case FieldAmount:
			return v.Amount, true
		case FieldPrice:
			return v.Price, true
		case FieldStrategy:
			return v.Strategy, true
		case FieldReasons:
			return v.Reasons, true
		case FieldRisks:
			return v.Risks, true
		case FieldExpectedReturn:
			if name == n.Camel {
				return v.ExpectedReturn, true
			}
			return v.ExpectedReturnWire, true
		case FieldExitPlan:
			if name == n.Camel {
				return v.ExitPlan, true
			}
			return v.ExitPlanWire, true
		case FieldMarketConditions:
			if name == n.Camel {
				return v.MarketConditions, true
			}
			return v.MarketConditionsWire, true
		case FieldEmotionalState:
			if name == n.Camel {
				return v.EmotionalState, true
			}
			return v.EmotionalStateWire, true
		}
	}
	return "", false
}
