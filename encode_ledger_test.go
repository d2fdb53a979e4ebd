package irtax

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeLedger(t *testing.T) {
	jsonlStream := `
{"command":"buy","date":"2024-08-01","asset":"US0378331005","quantity":10,"price":195.5,"currency":"EUR"}
{"command":"interest","date":"2024-08-02","amount":12.5,"withholding":4.13,"country":"ie","currency":"EUR"}

{"command":"sell","date":"2024-08-02","owner":"alice","asset":"IE00B4L5Y983","quantity":5,"price":140.2,"fees":1}
{"command":"dividend","date":"2024-08-03","asset":"US0378331005","amount":5.50,"country":"US"}
{"command":"distribution","date":"2024-07-01","asset":"IE00B4L5Y983","amount":3}
`
	ledger, err := DecodeLedger(strings.NewReader(jsonlStream))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	if ledger.Len() != 5 {
		t.Fatalf("DecodeLedger() decoded %d records, want 5", ledger.Len())
	}

	// Records are sorted by date, the distribution comes first.
	expectedTypes := []reflect.Type{
		reflect.TypeOf(IncomeEvent{}),
		reflect.TypeOf(Transaction{}),
		reflect.TypeOf(IncomeEvent{}),
		reflect.TypeOf(Transaction{}),
		reflect.TypeOf(IncomeEvent{}),
	}
	for i, rec := range ledger.Records() {
		if reflect.TypeOf(rec) != expectedTypes[i] {
			t.Errorf("record %d has wrong type. Got: %T, want: %v", i+1, rec, expectedTypes[i])
		}
	}

	sell := ledger.Transactions()[1]
	if sell.Owner != "alice" || sell.Kind != CmdSell || !sell.Proceeds().Equal(M(700, "")) {
		t.Errorf("sell = %+v, want alice selling for 700 net", sell)
	}
	if got := ledger.Income()[1].Country; got != "IE" {
		t.Errorf("country = %q, want IE", got)
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unknown command without a date", `{"command":"deposit","date":"soon","amount":1}`, "line 1:"},
		{"malformed json", "\n" + `{"command":"buy",`, "line 2:"},
		{"bad date", `{"command":"buy","date":"yesterday","asset":"X","quantity":1,"price":1}`, "line 1:"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tc.input))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("DecodeLedger() error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestDecodeLedger_UnknownCommand(t *testing.T) {
	input := `{"command":"buy","date":"2024-01-10","asset":"US0378331005","quantity":10,"price":10,"currency":"EUR"}
{"command":"transfer","date":"2024-02-01","owner":"alice","asset":"US0378331005","to":"bob"}
{"command":"sell","date":"2024-03-01","asset":"US0378331005","quantity":10,"price":12,"currency":"EUR"}
`
	ledger, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	if ledger.Len() != 3 || len(ledger.Transactions()) != 2 {
		t.Fatalf("decoded %d records and %d transactions, want 3 and 2", ledger.Len(), len(ledger.Transactions()))
	}
	u, ok := ledger.Records()[1].(UnknownRecord)
	if !ok {
		t.Fatalf("record 2 is a %T, want an UnknownRecord", ledger.Records()[1])
	}
	if u.What() != "transfer" || u.Who() != "alice" || u.When() != day("2024-02-01") {
		t.Errorf("unknown record = %+v", u)
	}
	var invalid *InvalidTransactionError
	if err := u.Validate(); !errors.As(err, &invalid) || !strings.Contains(err.Error(), `"transfer"`) {
		t.Errorf("Validate() = %v, want an InvalidTransactionError naming the command", err)
	}

	// The line is written back as it was read.
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() returned an unexpected error: %v", err)
	}
	if got := strings.Split(buf.String(), "\n")[1]; got != strings.Split(input, "\n")[1] {
		t.Errorf("unknown line re-encoded as %s", got)
	}
}

func TestEncodeLedger(t *testing.T) {
	// Deliberately unsorted, the two records of 2024-08-01 must keep their relative order.
	ledger := ledgerOf(
		NewBuy("", AAPL, day("2024-08-03"), Q(10), EUR(100.5), EUR(1.25)),
		NewIncome("", CmdInterest, day("2024-08-01"), EUR(100), EUR(33), "IE"),
		NewSell("bob", IWDA, day("2024-08-01"), Q(2), EUR(80), EUR(0)),
	)

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() returned an unexpected error: %v", err)
	}

	want := `{"command":"interest","date":"2024-08-01","amount":100,"withholding":33,"country":"IE","currency":"EUR"}
{"command":"sell","date":"2024-08-01","owner":"bob","asset":"IE00B4L5Y983","quantity":2,"price":80,"currency":"EUR"}
{"command":"buy","date":"2024-08-03","asset":"US0378331005","quantity":10,"price":100.5,"fees":1.25,"currency":"EUR"}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeLedger() output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	// The output is the canonical form: decoding and encoding again is stable.
	again, err := DecodeLedger(strings.NewReader(want))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	buf.Reset()
	if err := EncodeLedger(&buf, again); err != nil {
		t.Fatalf("EncodeLedger() returned an unexpected error: %v", err)
	}
	if got := buf.String(); got != want {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
