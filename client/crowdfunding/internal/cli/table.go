package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/olekukonko/tablewriter"
)

// campaignRow is a campaign as printed by get and list. Closed campaigns only have an address.
type campaignRow struct {
	info   crowdfunding.CampaignInfo
	state  crowdfunding.CampaignState
	actual uint64
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader(header)
	return table
}

func renderCampaigns(w io.Writer, rows []campaignRow) {
	table := newTable(w, []string{"Address", "Title", "Owner", "Deadline", "State", "Recorded", "Actual"})
	for _, row := range rows {
		if row.info.Closed() {
			table.Append([]string{row.info.Address.String(), "-", "-", "-", string(row.state), "-", "-"})
			continue
		}
		c := row.info.Campaign
		table.Append([]string{
			row.info.Address.String(),
			c.Title,
			c.Owner.String(),
			formatDeadline(c.Deadline),
			string(row.state),
			strconv.FormatUint(c.TotalContribution, 10),
			strconv.FormatUint(row.actual, 10),
		})
	}
	table.Render()
}

func renderCampaign(w io.Writer, row campaignRow) {
	c := row.info.Campaign
	table := newTable(w, []string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"Address", row.info.Address.String()},
		{"Title", c.Title},
		{"Description", c.Description},
		{"Owner", c.Owner.String()},
		{"Deadline", formatDeadline(c.Deadline)},
		{"State", string(row.state)},
		{"Recorded contribution", strconv.FormatUint(c.TotalContribution, 10)},
		{"Actual contribution", strconv.FormatUint(row.actual, 10)},
		{"Balance", strconv.FormatUint(row.info.Lamports, 10)},
	})
	table.Render()
}

func formatDeadline(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
