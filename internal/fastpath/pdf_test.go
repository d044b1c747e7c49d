package fastpath

import (
	"testing"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
)

func signageSignTypes() patterns.TradePatterns {
	return patterns.TradePatterns{
		SignTypes: []patterns.SignTypePattern{
			{Code: "EXIT", Terms: []string{"exit sign"}},
			{Code: "RID", Terms: []string{"room identification"}},
		},
	}
}

const schedulePage = `SIGN SCHEDULE - LEVEL 1

MARK  DESCRIPTION                 QTY  UNIT
S-101  Exit sign, ceiling mount    12  EA
S-102  Room identification plaque   4  EA
S-103  Stair level sign

General notes apply to all marks above.`

func TestParsePDFSchedule(t *testing.T) {
	items, issues := parsePDFSchedule([]string{schedulePage}, signageSignTypes())

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3: %+v", len(items), items)
	}
	if items[0].Tag != "S-101" || items[0].Quantity != 12 || items[0].Unit != "EA" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[0].SignType != "EXIT" {
		t.Errorf("items[0].SignType = %q, want EXIT", items[0].SignType)
	}
	if items[1].SignType != "RID" {
		t.Errorf("items[1].SignType = %q, want RID", items[1].SignType)
	}
	if items[0].PageNumber != 1 {
		t.Errorf("items[0].PageNumber = %d, want 1", items[0].PageNumber)
	}

	// S-103 has no quantity cell; the row still yields an item plus issue.
	foundMissingQty := false
	for _, is := range issues {
		if is.Kind == models.IssueMissingQuantity {
			foundMissingQty = true
		}
	}
	if !foundMissingQty {
		t.Errorf("issues = %+v, want a missing-quantity issue", issues)
	}
}

func TestParsePDFScheduleNoHeader(t *testing.T) {
	items, issues := parsePDFSchedule([]string{"Cover sheet\nProject: Riverside Campus"}, patterns.TradePatterns{})
	if len(items) != 0 {
		t.Errorf("items = %+v, want none", items)
	}
	if len(issues) != 1 || issues[0].Kind != models.IssueNoTableHeader {
		t.Errorf("issues = %+v, want a single no-header issue", issues)
	}
}

func TestParsePDFScheduleTableEndsAtProse(t *testing.T) {
	page := "MARK  DESCRIPTION  QTY  UNIT\n" +
		"S-201  Exit sign  2  EA\n" +
		"Refer to specification section 10 14 00 for submittal requirements\n" +
		"S-999  Should not parse  9  EA\n"
	items, _ := parsePDFSchedule([]string{page}, patterns.TradePatterns{})
	if len(items) != 1 {
		t.Fatalf("items = %+v, want the table to end at the prose line", items)
	}
	if items[0].Tag != "S-201" {
		t.Errorf("items[0].Tag = %q", items[0].Tag)
	}
}

func TestParsePDFScheduleMultiPage(t *testing.T) {
	page1 := "MARK  DESCRIPTION  QTY  UNIT\nS-301  Exit sign  1  EA\n"
	page2 := "MARK  DESCRIPTION  QTY  UNIT\nS-302  Exit sign  2  EA\n"
	items, _ := parsePDFSchedule([]string{page1, page2}, patterns.TradePatterns{})
	if len(items) != 2 {
		t.Fatalf("items = %+v, want 2", items)
	}
	if items[0].PageNumber != 1 || items[1].PageNumber != 2 {
		t.Errorf("page numbers = %d, %d; want 1, 2", items[0].PageNumber, items[1].PageNumber)
	}
}
