package printer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/pkg/payload"
)

func slipReceipt(t *testing.T, body string) *payload.Receipt {
	t.Helper()
	rec, err := payload.Parse([]byte(body))
	require.NoError(t, err)
	return rec
}

func TestComposeSlip(t *testing.T) {
	rec := slipReceipt(t, `{
		"items": [
			{"name": "Gasoline 95", "amount": 40.5, "quantity": 30},
			{"name": "Water Bottle", "amount": 10.0, "quantity": 1}
		],
		"header_info": {"Pump": "3"},
		"transaction_info": {"received": 1300}
	}`)

	layout := config.Default().Layout
	slip := ComposeSlip(rec, layout, 44)
	lines := strings.Split(slip, "\n")

	assert.Equal(t, "<<C>>"+layout.HeaderTitle, lines[0])
	assert.Contains(t, slip, "<<C>><<SM>>"+layout.HeaderDescription+"\n")
	assert.Contains(t, slip, "<<C>>"+layout.ReceiptTitle+"\n")
	assert.Contains(t, slip, "Pump: 3\n")
	assert.Contains(t, slip, "รายการ:\n")

	// Item block: quantity with the volume label, unit price with the
	// currency label, then the line subtotal.
	assert.Contains(t, slip, "Gasoline 95\n30.00 ลิตร × 40.50 บาท\n= 1215.00 บาท\n")
	assert.Contains(t, slip, "Water Bottle\n1.00 ลิตร × 10.00 บาท\n= 10.00 บาท\n")
	assert.Contains(t, slip, strings.Repeat("-", 44)+"\n")

	// Footer entries written by the cascade come through.
	assert.Contains(t, slip, "Received: 1300.00\n")
	assert.Contains(t, slip, "Change: 75.00\n")

	assert.True(t, strings.HasSuffix(slip, "\n<<C>>"+layout.FooterLabel+"\n"))
}

func TestComposeSlip_TotalLineSpansFullWidth(t *testing.T) {
	rec := slipReceipt(t, `{"items": [{"name": "Diesel", "amount": 30, "quantity": 1}]}`)

	layout := config.Default().Layout
	slip := ComposeSlip(rec, layout, 44)

	var totalLine string
	for _, line := range strings.Split(slip, "\n") {
		if strings.HasPrefix(line, "รวมทั้งหมด") {
			totalLine = line
		}
	}
	require.NotEmpty(t, totalLine)

	assert.Equal(t, 44, utf8.RuneCountInString(totalLine))
	assert.True(t, strings.HasSuffix(totalLine, "30.00 "+layout.Currency))
}

func TestComposeSlip_NarrowWidthKeepsOneSpace(t *testing.T) {
	rec := slipReceipt(t, `{"items": [{"name": "Diesel", "amount": 30, "quantity": 1}]}`)

	slip := ComposeSlip(rec, config.Default().Layout, 10)

	assert.Contains(t, slip, "รวมทั้งหมด 30.00 บาท\n")
}

func TestComposeSlip_SkipsEmptyLayoutBlocks(t *testing.T) {
	rec := slipReceipt(t, `{"items": [{"name": "Diesel", "amount": 30, "quantity": 1}]}`)

	layout := config.Layout{Currency: "THB", VolumeUnit: "L"}
	slip := ComposeSlip(rec, layout, 32)

	assert.NotContains(t, slip, "<<C>>")
	assert.Contains(t, slip, "1.00 L × 30.00 THB\n")
	assert.True(t, strings.HasPrefix(slip, "รายการ:\n"))
}

func TestStripTokens(t *testing.T) {
	in := "<<C>>Title\n<<C>><<SM>>small\nplain\n<<R>>right"
	assert.Equal(t, "Title\nsmall\nplain\nright", StripTokens(in))
}
