//go:build integration

package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

// Integration tests require a real spreadsheet with the monthly template.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_AppendAndReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	creds := Credentials{
		ClientEmail: os.Getenv("GOOGLE_CLIENT_EMAIL"),
		PrivateKey:  strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n"),
	}
	if !creds.hasKeyPair() {
		t.Skip("service account key pair not configured, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, spreadsheetID, creds, ports.DefaultLayout())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	now := time.Now()
	sheet := core.SheetName(now)

	ref, err := client.Append(ctx, sheet, core.Expense{
		Timestamp: now,
		Category:  core.Agua,
		Note:      "integration test",
		Submitter: "go test",
		Amount:    1.25,
	})
	if err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	t.Logf("Appended row at %s", ref)

	got, err := client.ReadRanges(ctx, sheet, ports.DefaultLayout().ReportRanges())
	if err != nil {
		t.Fatalf("Failed to read ranges: %v", err)
	}
	if len(got[ports.RangeExpenses]) == 0 {
		t.Fatal("expected at least one expense row after append")
	}
}
