package domain

// Engaging Networks export column names
const (
	ColumnSupporterID      = "Supporter ID"
	ColumnSupporterEmail   = "Supporter Email"
	ColumnCampaignID       = "Campaign ID"
	ColumnOrganization     = "Organization or Company"
	ColumnFirstName        = "First Name"
	ColumnLastName         = "Last Name"
	ColumnPartnerName      = "Partner Name"
	ColumnAddress1         = "Address 1"
	ColumnCity             = "City"
	ColumnState            = "State"
	ColumnZIPCode          = "ZIP Code"
	ColumnRaisersEdgeID    = "Raisers Edge Constituent ID"
	ColumnAssignedRegion   = "Assigned Region"
	ColumnCampaignData4    = "Campaign Data 4"
	ColumnCampaignData16   = "Campaign Data 16"
	ColumnDonationAmount   = "Donation Amount"
	ColumnMonthlyStartDate = "Monthly Donation Start Date"
)

// DonationStartDateColumn is the input column holding the D/M/Y start date
const DonationStartDateColumn = ColumnCampaignData16

// RequiredColumns is the fixed projection, in output order
var RequiredColumns = []string{
	ColumnSupporterID,
	ColumnSupporterEmail,
	ColumnCampaignID,
	ColumnOrganization,
	ColumnFirstName,
	ColumnLastName,
	ColumnPartnerName,
	ColumnAddress1,
	ColumnCity,
	ColumnState,
	ColumnZIPCode,
	ColumnRaisersEdgeID,
	ColumnAssignedRegion,
	ColumnCampaignData4,
	ColumnCampaignData16,
}

// ColumnRenames maps input column names to their output names
var ColumnRenames = map[string]string{
	ColumnCampaignData4:  ColumnDonationAmount,
	ColumnCampaignData16: ColumnMonthlyStartDate,
}

// OutputColumns returns RequiredColumns with ColumnRenames applied
func OutputColumns() []string {
	out := make([]string, len(RequiredColumns))
	for i, c := range RequiredColumns {
		if renamed, ok := ColumnRenames[c]; ok {
			c = renamed
		}
		out[i] = c
	}
	return out
}
